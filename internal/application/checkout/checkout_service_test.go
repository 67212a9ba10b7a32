package checkout

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductFinder struct {
	mock.Mock
}

func (m *MockProductFinder) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

type MockCartReader struct {
	mock.Mock
}

func (m *MockCartReader) Snapshot(ctx context.Context, session string) *cart.Cart {
	args := m.Called(ctx, session)
	return args.Get(0).(*cart.Cart)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordCheckoutLink(ctx context.Context, kind string) {
	m.Called(ctx, kind)
}

var testConfig = config.CheckoutConfig{BaseURL: "https://wa.me", Phone: "918380050609"}

func messageOf(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("text")
}

func TestService_ProductLink(t *testing.T) {
	ctx := context.Background()

	t.Run("builds enquiry for product", func(t *testing.T) {
		products := new(MockProductFinder)
		products.On("FindByID", mock.Anything, "p1").Return(&catalog.Product{
			ID: "p1", Title: "Banarasi", Price: "4100", ImageURLs: []string{"https://img/p1.jpg"},
		}, nil)
		metrics := new(MockMetrics)
		metrics.On("RecordCheckoutLink", mock.Anything, LinkKindProduct).Once()

		svc := NewService(products, new(MockCartReader), testConfig, metrics, nil)
		resp, err := svc.ProductLink(ctx, "p1")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(resp.Link, "https://wa.me/918380050609?text="))
		assert.Equal(t, resp.Message, messageOf(t, resp.Link))
		assert.Contains(t, resp.Message, "Banarasi")
		assert.Contains(t, resp.Message, "₹4100")
		assert.Contains(t, resp.Message, "https://img/p1.jpg")
		metrics.AssertExpectations(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		products := new(MockProductFinder)
		products.On("FindByID", mock.Anything, "nope").Return(nil, shared.ErrNotFound)

		svc := NewService(products, new(MockCartReader), testConfig, nil, nil)
		_, err := svc.ProductLink(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_CartLink(t *testing.T) {
	ctx := context.Background()

	t.Run("builds order for cart", func(t *testing.T) {
		c := cart.New([]cart.Line{
			{ProductID: "p1", Title: "Banarasi", Price: "4100", Quantity: 2},
			{ProductID: "p2", Title: "Chanderi", Price: "2200", Quantity: 1, ImageURLs: []string{"https://img/p2.jpg"}},
		})
		carts := new(MockCartReader)
		carts.On("Snapshot", mock.Anything, "s1").Return(c)
		metrics := new(MockMetrics)
		metrics.On("RecordCheckoutLink", mock.Anything, LinkKindCart).Once()

		svc := NewService(new(MockProductFinder), carts, testConfig, metrics, nil)
		resp, err := svc.CartLink(ctx, "s1")
		require.NoError(t, err)

		msg := messageOf(t, resp.Link)
		assert.Equal(t, resp.Message, msg)
		assert.Contains(t, msg, "Banarasi x 2 = ₹8200")
		assert.Contains(t, msg, "Chanderi x 1 = ₹2200")
		assert.Contains(t, msg, "Link: https://img/p2.jpg")
		metrics.AssertExpectations(t)
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		carts := new(MockCartReader)
		carts.On("Snapshot", mock.Anything, "s1").Return(&cart.Cart{})
		metrics := new(MockMetrics)

		svc := NewService(new(MockProductFinder), carts, testConfig, metrics, nil)
		_, err := svc.CartLink(ctx, "s1")
		assert.ErrorIs(t, err, ErrCartEmpty)
		metrics.AssertNotCalled(t, "RecordCheckoutLink", mock.Anything, mock.Anything)
	})
}
