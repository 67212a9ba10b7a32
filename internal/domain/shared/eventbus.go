package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific event types
	// If no event types are provided, the handler's own EventTypes are used.
	// The returned function removes the subscription; calling it more than
	// once is a no-op.
	Subscribe(handler EventHandler, eventTypes ...string) (unsubscribe func())
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventHandlerFunc adapts a function to EventHandler. It receives every
// event type it is subscribed with.
type EventHandlerFunc func(ctx context.Context, event DomainEvent) error

// Handle calls f
func (f EventHandlerFunc) Handle(ctx context.Context, event DomainEvent) error {
	return f(ctx, event)
}

// EventTypes returns nil; callers pass event types to Subscribe
func (f EventHandlerFunc) EventTypes() []string {
	return nil
}
