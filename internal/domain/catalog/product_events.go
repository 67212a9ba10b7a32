package catalog

import "github.com/sari-store/storefront/internal/domain/shared"

// AggregateTypeProduct names products in domain events
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeProductUpdated = "ProductUpdated"
	EventTypeProductDeleted = "ProductDeleted"
)

// ProductEventTypes lists every event that changes the catalog
var ProductEventTypes = []string{
	EventTypeProductCreated,
	EventTypeProductUpdated,
	EventTypeProductDeleted,
}

// ProductChangedEvent is published after a product is created, updated or
// deleted.
type ProductChangedEvent struct {
	shared.BaseDomainEvent
	ProductID string `json:"product_id"`
	Title     string `json:"title,omitempty"`
	Category  string `json:"category,omitempty"`
}

// NewProductCreatedEvent creates a ProductCreated event
func NewProductCreatedEvent(p *Product) *ProductChangedEvent {
	return newProductEvent(EventTypeProductCreated, p)
}

// NewProductUpdatedEvent creates a ProductUpdated event
func NewProductUpdatedEvent(p *Product) *ProductChangedEvent {
	return newProductEvent(EventTypeProductUpdated, p)
}

// NewProductDeletedEvent creates a ProductDeleted event
func NewProductDeletedEvent(id string) *ProductChangedEvent {
	return &ProductChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, id),
		ProductID:       id,
	}
}

func newProductEvent(eventType string, p *Product) *ProductChangedEvent {
	return &ProductChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Title:           p.Title,
		Category:        p.Category,
	}
}
