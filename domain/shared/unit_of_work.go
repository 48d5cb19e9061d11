package shared

import "context"

// UnitOfWork manages the transaction boundary and collects events from the
// aggregates touched inside it. Repositories called within Execute pick the
// transaction up from the context.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)
}

// UnitOfWorkFactory creates a fresh unit of work per request. A unit of work
// accumulates aggregates and must not be shared across requests.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// OutboxRepository persists domain events for asynchronous publication.
type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
