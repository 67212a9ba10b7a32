package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/sari-store/storefront/internal/application/catalog"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
)

// CatalogReader is the read side of the catalog used by CatalogHandler
type CatalogReader interface {
	FetchAll(ctx context.Context, order catalog.Ordering) []catalog.Product
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	Categories(ctx context.Context) []string
}

// CatalogHandler serves the public product listing
type CatalogHandler struct {
	BaseHandler
	catalog      CatalogReader
	defaultOrder catalog.Ordering
}

// NewCatalogHandler creates a catalog handler. defaultOrder applies when a
// request names no order.
func NewCatalogHandler(reader CatalogReader, defaultOrder catalog.Ordering) *CatalogHandler {
	if defaultOrder == "" {
		defaultOrder = catalog.OrderLatest
	}
	return &CatalogHandler{
		catalog:      reader,
		defaultOrder: defaultOrder,
	}
}

// ListProducts godoc
// @ID           listCatalogProducts
// @Summary      List products
// @Description  Returns the products in the requested order, optionally narrowed to one category, with the category facets of the whole catalog
// @Tags         catalog
// @Produce      json
// @Param        order    query string false "latest or shuffle"
// @Param        category query string false "category facet; All matches everything"
// @Success      200 {object} APIResponse[catalogapp.ProductListResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query catalogapp.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := catalog.ParseOrdering(query.Order, h.defaultOrder)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	products := h.catalog.FetchAll(c.Request.Context(), order)
	filtered := catalog.FilterByCategory(products, query.Category)

	h.SuccessList(c, catalogapp.ProductListResponse{
		Products:   catalogapp.ToProductResponses(filtered),
		Categories: catalog.DeriveCategories(products),
	}, len(filtered))
}

// GetProduct godoc
// @ID           getCatalogProduct
// @Summary      Get a product
// @Description  Returns one product with its image carousel settings
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.ToProductDetailResponse(*product))
}

// ListCategories godoc
// @ID           listCatalogCategories
// @Summary      List category facets
// @Description  Returns All followed by every distinct category, newest product first
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]string]
// @Router       /catalog/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories := h.catalog.Categories(c.Request.Context())
	h.SuccessList(c, categories, len(categories))
}
