package cart

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// lockStripes bounds the per-session mutexes
const lockStripes = 64

// ProductFinder looks up the product snapshot stored in a cart line
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

// Metrics receives cart events
type Metrics interface {
	RecordItemAdded(ctx context.Context)
}

type nopMetrics struct{}

func (nopMetrics) RecordItemAdded(context.Context) {}

// Service runs cart operations for many sessions. Each call rehydrates the
// session's cart from storage, so the storage backend stays the source of
// truth across server instances. Calls for one session are serialized.
type Service struct {
	storage  cart.Storage
	products ProductFinder
	metrics  Metrics
	logger   *zap.Logger
	locks    [lockStripes]sync.Mutex
}

// NewService creates a cart service. metrics may be nil.
func NewService(storage cart.Storage, products ProductFinder, metrics Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:  storage,
		products: products,
		metrics:  metrics,
		logger:   logger,
	}
}

// Get returns the session's cart
func (s *Service) Get(ctx context.Context, session string) (*CartResponse, error) {
	var resp *CartResponse
	s.withStore(ctx, session, func(st *Store) {
		resp = ToCartResponse(st.Cart(ctx))
	})
	return resp, nil
}

// AddItem adds one unit of the product to the session's cart. The line
// snapshots the product as it is now. When the cart cannot be saved the
// mutation is lost and only the error is returned.
func (s *Service) AddItem(ctx context.Context, session string, req AddItemRequest) (*CartResponse, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product id is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_item",
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrCartSession, session,
	)
	defer span.End()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var resp *CartResponse
	s.withStore(ctx, session, func(st *Store) {
		err = st.Add(ctx, *product)
		resp = ToCartResponse(st.Cart(ctx))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, persistError(err)
	}
	s.metrics.RecordItemAdded(ctx)
	return resp, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *Service) UpdateQuantity(ctx context.Context, session, productID string, req UpdateQuantityRequest) (*CartResponse, error) {
	if req.Quantity == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity is required")
	}
	var (
		resp *CartResponse
		err  error
	)
	s.withStore(ctx, session, func(st *Store) {
		err = st.UpdateQuantity(ctx, productID, *req.Quantity)
		resp = ToCartResponse(st.Cart(ctx))
	})
	if err != nil {
		return nil, persistError(err)
	}
	return resp, nil
}

// RemoveItem deletes a line
func (s *Service) RemoveItem(ctx context.Context, session, productID string) (*CartResponse, error) {
	var (
		resp *CartResponse
		err  error
	)
	s.withStore(ctx, session, func(st *Store) {
		err = st.Remove(ctx, productID)
		resp = ToCartResponse(st.Cart(ctx))
	})
	if err != nil {
		return nil, persistError(err)
	}
	return resp, nil
}

// Snapshot returns a copy of the session's domain cart
func (s *Service) Snapshot(ctx context.Context, session string) *cart.Cart {
	var c *cart.Cart
	s.withStore(ctx, session, func(st *Store) {
		c = cart.New(st.Cart(ctx).Lines())
	})
	return c
}

func (s *Service) withStore(ctx context.Context, session string, fn func(*Store)) {
	mu := &s.locks[stripe(session)]
	mu.Lock()
	defer mu.Unlock()
	fn(NewStore(s.storage, session, s.logger))
}

func stripe(session string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session))
	return h.Sum32() % lockStripes
}

func persistError(err error) error {
	return shared.WrapDomainError("CART_PERSIST_FAILED", "Cart could not be saved", err)
}
