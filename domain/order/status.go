package order

// Status enumerates the lifecycle states shared by orders and sub-orders.
// The storage default is pending.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Statuses is the authoritative set; any other value fails validation at
// input-parsing time, before reaching the aggregate.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", NewInvalidStatusError(raw)
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// next holds the forward fulfilment chain for sub-orders:
// pending -> confirmed -> processing -> shipped -> delivered.
var next = map[Status]Status{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// CanTransitionTo reports whether a sub-order may move from s to target.
// Cancelled and refunded are reachable from any non-terminal state; terminal
// states absorb.
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled || target == StatusRefunded {
		return true
	}
	return next[s] == target
}
