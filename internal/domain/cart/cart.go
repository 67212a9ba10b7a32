// Package cart models the shopper's cart: an ordered list of product
// snapshots with quantities.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/sari-store/storefront/internal/domain/catalog"
)

// Line is one product in the cart. Title, Price and ImageURLs are a snapshot
// taken when the product was first added, so displaying the cart never needs
// a catalog lookup.
type Line struct {
	ProductID string   `json:"id"`
	Title     string   `json:"title"`
	Price     string   `json:"price,omitempty"`
	ImageURLs []string `json:"imageURLs,omitempty"`
	Quantity  int      `json:"quantity"`
}

// CoverImage returns the first snapshot image or ""
func (l Line) CoverImage() string {
	if len(l.ImageURLs) > 0 {
		return l.ImageURLs[0]
	}
	return ""
}

// Cart holds at most one Line per product, in insertion order. The zero value
// is an empty cart.
type Cart struct {
	lines []Line
}

// New returns a cart holding lines. Lines with a non-positive quantity or a
// repeated product id are dropped.
func New(lines []Line) *Cart {
	c := &Cart{}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 || l.ProductID == "" {
			continue
		}
		if _, dup := seen[l.ProductID]; dup {
			continue
		}
		seen[l.ProductID] = struct{}{}
		l.ImageURLs = append([]string(nil), l.ImageURLs...)
		c.lines = append(c.lines, l)
	}
	return c
}

// Add increments the product's quantity, or appends a new line with
// quantity 1.
func (c *Cart) Add(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		ImageURLs: append([]string(nil), p.Images()...),
		Quantity:  1,
	})
}

// Remove deletes the product's line. It is a no-op if the product is absent.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity sets the line's quantity to quantity. A quantity <= 0 removes
// the line. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// TotalCount returns the sum of all line quantities
func (c *Cart) TotalCount() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for productID
func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the cart as a JSON array of lines
func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// UnmarshalJSON decodes a JSON array of lines
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	*c = *New(lines)
	return nil
}
