// Package catalog serves the public product listing and pushes live updates
// to subscribers.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// feedRetryDelay is the pause before reopening a failed change feed
const feedRetryDelay = 5 * time.Second

// Service reads the catalog. Reads never fail: store errors are logged and
// an empty listing is returned.
type Service struct {
	repo     catalog.ProductRepository
	shuffler *catalog.Shuffler
	feed     catalog.ChangeFeed
	logger   *zap.Logger

	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64

	unsubscribeBus func()
}

type subscription struct {
	notify chan struct{}
	done   chan struct{}
}

// Option configures a Service
type Option func(*Service)

// WithChangeFeed adds a store-driven change source, used by RunChangeFeed
func WithChangeFeed(feed catalog.ChangeFeed) Option {
	return func(s *Service) {
		s.feed = feed
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a catalog service. When bus is non-nil, product events
// on it wake every subscriber.
func NewService(repo catalog.ProductRepository, shuffler *catalog.Shuffler, bus shared.EventSubscriber, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		shuffler: shuffler,
		logger:   zap.NewNop(),
		subs:     make(map[uint64]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	if bus != nil {
		s.unsubscribeBus = bus.Subscribe(shared.EventHandlerFunc(func(ctx context.Context, _ shared.DomainEvent) error {
			s.notifyAll()
			return nil
		}), catalog.ProductEventTypes...)
	}
	return s
}

// FetchAll returns every product arranged by order
func (s *Service) FetchAll(ctx context.Context, order catalog.Ordering) []catalog.Product {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch products", zap.Error(err))
		return []catalog.Product{}
	}
	if products == nil {
		products = []catalog.Product{}
	}
	if order == catalog.OrderShuffle {
		return s.shuffler.Shuffle(products)
	}
	return products
}

// FindByID returns one product
func (s *Service) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Categories derives the category facets from the latest listing
func (s *Service) Categories(ctx context.Context) []string {
	return catalog.DeriveCategories(s.FetchAll(ctx, catalog.OrderLatest))
}

// Subscribe delivers the latest-first listing to callback once right away
// and again after every catalog change, until ctx is done or the returned
// function is called. Callbacks for one subscription never overlap; changes
// that arrive while a callback runs are coalesced into one more delivery.
func (s *Service) Subscribe(ctx context.Context, callback func([]catalog.Product)) (unsubscribe func()) {
	sub := &subscription{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = sub
	s.mu.Unlock()

	var once sync.Once
	unsubscribe = func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.done)
		})
	}

	sub.notify <- struct{}{}
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case <-sub.notify:
			}

			products := s.FetchAll(ctx, catalog.OrderLatest)

			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			default:
				callback(products)
			}
		}
	}()

	return unsubscribe
}

// Subscribers returns the number of live subscriptions
func (s *Service) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// notifyAll wakes every subscriber without blocking
func (s *Service) notifyAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

// RunChangeFeed follows the configured change feed until ctx is done,
// reopening it after failures. It returns immediately without a feed.
func (s *Service) RunChangeFeed(ctx context.Context) {
	if s.feed == nil {
		return
	}
	for {
		err := s.feed.Watch(ctx, s.notifyAll)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("Product change feed stopped, retrying", zap.Error(err), zap.Duration("delay", feedRetryDelay))
		}

		timer := time.NewTimer(feedRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Close detaches the service from the event bus
func (s *Service) Close() {
	if s.unsubscribeBus != nil {
		s.unsubscribeBus()
	}
}
