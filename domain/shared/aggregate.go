package shared

// AggregateRoot is the entry point of an aggregate. All modifications to
// entities inside the aggregate go through it, and it records the domain
// events those modifications produce.
type AggregateRoot interface {
	// ExternalID returns the globally unique, client-visible identifier.
	// Internal numeric keys are a storage concern and stay out of this
	// interface.
	ExternalID() string

	// Version returns the optimistic-lock version counter.
	Version() int

	// PullEvents returns and clears the recorded domain events. The unit of
	// work calls it once per transaction; clearing prevents double delivery.
	PullEvents() []DomainEvent
}
