// Package checkout turns a product or a cart into a WhatsApp order link.
package checkout

import (
	"context"

	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/checkout"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/sari-store/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Link kinds reported to Metrics
const (
	LinkKindProduct = "product"
	LinkKindCart    = "cart"
)

// ErrCartEmpty is returned when checking out an empty cart
var ErrCartEmpty = shared.NewDomainError("CART_EMPTY", "Cart is empty")

// ProductFinder looks up a single product
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

// CartReader returns a copy of a session's cart
type CartReader interface {
	Snapshot(ctx context.Context, session string) *cart.Cart
}

// Metrics receives checkout events
type Metrics interface {
	RecordCheckoutLink(ctx context.Context, kind string)
}

type nopMetrics struct{}

func (nopMetrics) RecordCheckoutLink(context.Context, string) {}

// LinkResponse is a deep link with the message it carries
type LinkResponse struct {
	Link    string `json:"link"`
	Message string `json:"message"`
}

// Service builds checkout links
type Service struct {
	products ProductFinder
	carts    CartReader
	baseURL  string
	phone    string
	metrics  Metrics
	logger   *zap.Logger
}

// NewService creates a checkout service. metrics may be nil.
func NewService(products ProductFinder, carts CartReader, cfg config.CheckoutConfig, metrics Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products: products,
		carts:    carts,
		baseURL:  cfg.BaseURL,
		phone:    cfg.Phone,
		metrics:  metrics,
		logger:   logger,
	}
}

// ProductLink returns the enquiry link for one product
func (s *Service) ProductLink(ctx context.Context, productID string) (*LinkResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "product_link", telemetry.SpanAttrProductID, productID)
	defer span.End()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	msg := checkout.BuildSingleProductMessage(*product)
	s.metrics.RecordCheckoutLink(ctx, LinkKindProduct)
	return &LinkResponse{Link: checkout.DeepLink(s.baseURL, s.phone, msg), Message: msg}, nil
}

// CartLink returns the order link for the session's cart
func (s *Service) CartLink(ctx context.Context, session string) (*LinkResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "cart_link", telemetry.SpanAttrCartSession, session)
	defer span.End()

	c := s.carts.Snapshot(ctx, session)
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	msg := checkout.BuildCartMessage(c)
	s.metrics.RecordCheckoutLink(ctx, LinkKindCart)
	s.logger.Debug("Cart checkout link built", zap.Int("lines", len(c.Lines())), zap.Int("items", c.TotalCount()))
	return &LinkResponse{Link: checkout.DeepLink(s.baseURL, s.phone, msg), Message: msg}, nil
}
