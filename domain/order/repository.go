package order

import "context"

// Repository is the write-side port for order aggregates. Implementations
// must respect the transaction, if any, carried by the context.
type Repository interface {
	// Create persists the whole aggregate tree in one transaction and binds
	// the database-assigned ids onto the aggregate.
	Create(ctx context.Context, o *Order) error

	// FindByID loads the aggregate, sub-orders and items included, by its
	// internal id. Soft-deleted orders are not found.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByExternalID loads the aggregate by its public UUID.
	FindByExternalID(ctx context.Context, externalID string) (*Order, error)

	// FindBySubOrderID loads the aggregate that owns the given sub-order.
	FindBySubOrderID(ctx context.Context, subOrderID int64) (*Order, error)

	// Update writes the mutable order columns and any changed sub-order
	// statuses, guarded by the aggregate's version. Returns
	// ErrConcurrentModification when the stored version moved.
	Update(ctx context.Context, o *Order) error

	// SoftDelete stamps deleted_at, guarded by the aggregate's version.
	SoftDelete(ctx context.Context, o *Order) error

	CreateMessage(ctx context.Context, m *Message) error
	FindMessageByID(ctx context.Context, id int64) (*Message, error)
	MarkMessageRead(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, orderID int64) ([]Message, error)
}

// Filter narrows order listings. Nil fields are ignored. A StoreID filter
// matches orders having at least one sub-order for that store; each order
// appears once regardless of how many of its sub-orders match.
type Filter struct {
	UserID  *int64
	Status  *Status
	StoreID *int64
	Limit   int
	Offset  int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Normalize clamps paging to sane bounds.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// QueryService is the read-side port. Every result is eagerly joined: orders
// carry their sub-orders, items and messages in one round of queries, never
// one query per child row.
type QueryService interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByExternalID(ctx context.Context, externalID string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, error)
	ListByUser(ctx context.Context, userID int64, filter Filter) ([]*Order, error)
}
