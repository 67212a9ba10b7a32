package catalog

import "context"

// ProductRepository persists products. Implementations return
// shared.ErrNotFound for unknown ids.
type ProductRepository interface {
	// FindAll returns every product, newest first.
	FindAll(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	// Create stores p and assigns its ID and CreatedAt.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// ChangeFeed is implemented by stores that push change notifications
// themselves, such as a document store change stream. Watch blocks until
// ctx is done or the feed fails, calling onChange after every write.
type ChangeFeed interface {
	Watch(ctx context.Context, onChange func()) error
}
