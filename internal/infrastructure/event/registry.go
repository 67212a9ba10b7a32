package event

import (
	"sort"
	"sync"

	"github.com/sari-store/storefront/internal/domain/shared"
)

type subscription struct {
	id      uint64
	handler shared.EventHandler
}

// HandlerRegistry manages event handler registrations. Handlers are tracked
// by subscription id, so function handlers can be registered and removed.
type HandlerRegistry struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]subscription // eventType -> subscriptions
	wildcard []subscription            // subscriptions for all events
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]subscription),
	}
}

// Register adds a handler for specific event types and returns its
// subscription id. If no event types are provided, the handler receives all
// events.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := subscription{id: r.nextID, handler: handler}

	if len(eventTypes) == 0 {
		r.wildcard = append(r.wildcard, sub)
		return sub.id
	}

	seen := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		if seen[eventType] {
			continue
		}
		seen[eventType] = true
		r.handlers[eventType] = append(r.handlers[eventType], sub)
	}
	return sub.id
}

// Unregister removes a subscription from all event types
func (r *HandlerRegistry) Unregister(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = removeSubscription(r.wildcard, id)

	for eventType, subs := range r.handlers {
		r.handlers[eventType] = removeSubscription(subs, id)
		if len(r.handlers[eventType]) == 0 {
			delete(r.handlers, eventType)
		}
	}
}

// GetHandlers returns all handlers for a specific event type in
// registration order. This includes both type-specific handlers and wildcard
// handlers.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]subscription, 0, len(r.handlers[eventType])+len(r.wildcard))
	subs = append(subs, r.handlers[eventType]...)
	subs = append(subs, r.wildcard...)
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	result := make([]shared.EventHandler, len(subs))
	for i, sub := range subs {
		result[i] = sub.handler
	}
	return result
}

// Len returns the number of live subscriptions
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uint64]struct{})
	for _, sub := range r.wildcard {
		seen[sub.id] = struct{}{}
	}
	for _, subs := range r.handlers {
		for _, sub := range subs {
			seen[sub.id] = struct{}{}
		}
	}
	return len(seen)
}

func removeSubscription(subs []subscription, id uint64) []subscription {
	result := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			result = append(result, s)
		}
	}
	return result
}
