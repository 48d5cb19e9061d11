package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("in_transit")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Parsing is case sensitive; the canonical values are lowercase.
	_, err = ParseStatus("Pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}

func TestStatusCanTransitionTo(t *testing.T) {
	// The forward chain moves one step at a time.
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusProcessing))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusShipped))
	assert.True(t, StatusShipped.CanTransitionTo(StatusDelivered))

	// Skipping steps is not allowed.
	assert.False(t, StatusPending.CanTransitionTo(StatusProcessing))
	assert.False(t, StatusPending.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusShipped))

	// Neither is moving backwards.
	assert.False(t, StatusShipped.CanTransitionTo(StatusProcessing))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))

	// Cancellation and refund are reachable from any live state.
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped} {
		assert.True(t, s.CanTransitionTo(StatusCancelled), "from %s", s)
		assert.True(t, s.CanTransitionTo(StatusRefunded), "from %s", s)
	}

	// Terminal states absorb.
	for _, s := range []Status{StatusDelivered, StatusCancelled, StatusRefunded} {
		for _, target := range Statuses {
			assert.False(t, s.CanTransitionTo(target), "from %s to %s", s, target)
		}
	}
}
