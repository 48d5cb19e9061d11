package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapp/marketplace/domain/shared"
)

func TestNewStore(t *testing.T) {
	s, err := NewStore(7, "  Casa Cerámica  ", "Casa-Ceramica", "handmade pottery")
	require.NoError(t, err)

	assert.Equal(t, int64(7), s.OwnerID())
	assert.Equal(t, "Casa Cerámica", s.Name())
	assert.Equal(t, "casa-ceramica", s.Slug())
	assert.Equal(t, "handmade pottery", s.Description())
	assert.True(t, s.IsActive())
	assert.NotEmpty(t, s.ExternalID())
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore(0, "Shop", "shop", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewStore(7, "  ", "shop", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	for _, slug := range []string{"", "-shop", "shop-", "my shop", "shop--two", "ñandú"} {
		_, err = NewStore(7, "Shop", slug, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput, "slug %q", slug)
	}

	for _, slug := range []string{"shop", "my-shop", "shop-2", "a", "123"} {
		_, err = NewStore(7, "Shop", slug, "")
		assert.NoError(t, err, "slug %q", slug)
	}
}

func TestStoreRenameAndDeactivate(t *testing.T) {
	s, err := NewStore(7, "Shop", "shop", "")
	require.NoError(t, err)

	require.NoError(t, s.Rename("New Name", "new description"))
	assert.Equal(t, "New Name", s.Name())
	assert.Equal(t, "new description", s.Description())

	assert.ErrorIs(t, s.Rename("  ", ""), shared.ErrInvalidInput)

	s.Deactivate()
	assert.False(t, s.IsActive())
}
