package cart

import "github.com/sari-store/storefront/internal/domain/cart"

// AddItemRequest is the body of POST /cart/items
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// UpdateQuantityRequest is the body of PUT /cart/items/:productId. Quantity
// must be present; an explicit zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartLineResponse is one cart line
type CartLineResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    string   `json:"price,omitempty"`
	ImageURL string   `json:"imageURL,omitempty"`
	Images   []string `json:"imageURLs,omitempty"`
	Quantity int      `json:"quantity"`
}

// CartResponse is a cart with its badge count
type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalCount int                `json:"totalCount"`
}

// ToCartResponse converts a domain cart
func ToCartResponse(c *cart.Cart) *CartResponse {
	lines := c.Lines()
	resp := &CartResponse{
		Lines:      make([]CartLineResponse, 0, len(lines)),
		TotalCount: c.TotalCount(),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ID:       l.ProductID,
			Title:    l.Title,
			Price:    l.Price,
			ImageURL: l.CoverImage(),
			Images:   l.ImageURLs,
			Quantity: l.Quantity,
		})
	}
	return resp
}
