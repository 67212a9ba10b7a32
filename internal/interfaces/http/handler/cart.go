package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/sari-store/storefront/internal/application/cart"
	"github.com/sari-store/storefront/internal/infrastructure/logger"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
)

// maxClientIDLength bounds client supplied session and upload ids
const maxClientIDLength = 128

// CartOperations is the cart service used by CartHandler
type CartOperations interface {
	Get(ctx context.Context, session string) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, session string, req cartapp.AddItemRequest) (*cartapp.CartResponse, error)
	UpdateQuantity(ctx context.Context, session, productID string, req cartapp.UpdateQuantityRequest) (*cartapp.CartResponse, error)
	RemoveItem(ctx context.Context, session, productID string) (*cartapp.CartResponse, error)
}

// CartHandler serves the shopping cart of one browser session
type CartHandler struct {
	BaseHandler
	carts CartOperations
}

// NewCartHandler creates a cart handler
func NewCartHandler(carts CartOperations) *CartHandler {
	return &CartHandler{carts: carts}
}

// CartSession returns the request's cart session, minting one when the
// client sent none. The id is echoed in the response header either way.
func CartSession(c *gin.Context) (string, bool) {
	session := c.GetHeader(middleware.CartSessionHeader)
	if len(session) > maxClientIDLength {
		return "", false
	}
	if session == "" {
		session = uuid.New().String()
	}
	c.Header(middleware.CartSessionHeader, session)
	c.Request = c.Request.WithContext(logger.WithCartSession(c.Request.Context(), session))
	return session, true
}

func (h *CartHandler) session(c *gin.Context) (string, bool) {
	session, ok := CartSession(c)
	if !ok {
		h.BadRequest(c, "Cart session id is too long")
	}
	return session, ok
}

func (h *CartHandler) respond(c *gin.Context, resp *cartapp.CartResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetCart godoc
// @ID           getCart
// @Summary      Get the cart
// @Description  Returns the session's cart lines and badge count
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session id; minted when absent"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.carts.Get(c.Request.Context(), session)
	h.respond(c, resp, err)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add a product to the cart
// @Description  Adds one unit, snapshotting the product's current title, price and images
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session id"
// @Param        request body cartapp.AddItemRequest true "Product to add"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	resp, err := h.carts.AddItem(c.Request.Context(), session, req)
	h.respond(c, resp, err)
}

// UpdateQuantity godoc
// @ID           updateCartItem
// @Summary      Set a line's quantity
// @Description  Zero or a negative quantity removes the line; unknown products are ignored
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session id"
// @Param        productId path string true "Product ID"
// @Param        request body cartapp.UpdateQuantityRequest true "New quantity"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /cart/items/{productId} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req cartapp.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	resp, err := h.carts.UpdateQuantity(c.Request.Context(), session, c.Param("productId"), req)
	h.respond(c, resp, err)
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session id"
// @Param        productId path string true "Product ID"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.carts.RemoveItem(c.Request.Context(), session, c.Param("productId"))
	h.respond(c, resp, err)
}
