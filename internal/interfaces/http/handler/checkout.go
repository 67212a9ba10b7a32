package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/sari-store/storefront/internal/application/checkout"
)

// CheckoutLinks builds WhatsApp order links
type CheckoutLinks interface {
	ProductLink(ctx context.Context, productID string) (*checkoutapp.LinkResponse, error)
	CartLink(ctx context.Context, session string) (*checkoutapp.LinkResponse, error)
}

// CheckoutHandler hands out the chat deep links that replace a payment flow
type CheckoutHandler struct {
	BaseHandler
	links CheckoutLinks
}

// NewCheckoutHandler creates a checkout handler
func NewCheckoutHandler(links CheckoutLinks) *CheckoutHandler {
	return &CheckoutHandler{links: links}
}

// ProductLink godoc
// @ID           getCheckoutProductLink
// @Summary      Enquiry link for one product
// @Tags         checkout
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[checkoutapp.LinkResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /checkout/products/{id}/link [get]
func (h *CheckoutHandler) ProductLink(c *gin.Context) {
	link, err := h.links.ProductLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// CartLink godoc
// @ID           getCheckoutCartLink
// @Summary      Order link for the cart
// @Description  Lists every cart line with its quantity and the total number of items
// @Tags         checkout
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session id"
// @Success      200 {object} APIResponse[checkoutapp.LinkResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /checkout/cart/link [get]
func (h *CheckoutHandler) CartLink(c *gin.Context) {
	session, ok := CartSession(c)
	if !ok {
		h.BadRequest(c, "Cart session id is too long")
		return
	}
	link, err := h.links.CartLink(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}
