package catalog

import (
	"time"

	"github.com/sari-store/storefront/internal/domain/catalog"
)

// ListProductsQuery holds the query of GET /catalog/products
type ListProductsQuery struct {
	Order    string `form:"order" binding:"omitempty,oneof=latest shuffle"`
	Category string `form:"category"`
}

// ProductResponse is the public view of a product
type ProductResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     string    `json:"price,omitempty"`
	Category  string    `json:"category,omitempty"`
	ImageURLs []string  `json:"imageURLs"`
	ImageURL  string    `json:"imageURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductListResponse is a listing with its category facets
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Categories []string          `json:"categories"`
}

// SlideInfo describes the image carousel of a product
type SlideInfo struct {
	Count           int   `json:"count"`
	IntervalSeconds int64 `json:"intervalSeconds"`
	AutoAdvance     bool  `json:"autoAdvance"`
}

// ProductDetailResponse is a product with its carousel settings
type ProductDetailResponse struct {
	ProductResponse
	Slides SlideInfo `json:"slides"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p catalog.Product) ProductResponse {
	images := p.Images()
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:        p.ID,
		Title:     p.DisplayTitle(),
		Price:     p.Price,
		Category:  p.Category,
		ImageURLs: images,
		ImageURL:  p.CoverImage(),
		CreatedAt: p.CreatedAt,
	}
}

// ToProductResponses converts a listing
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}

// ToProductDetailResponse converts a product and adds slide settings. The
// carousel only auto-advances when there is more than one image.
func ToProductDetailResponse(p catalog.Product) ProductDetailResponse {
	resp := ProductDetailResponse{ProductResponse: ToProductResponse(p)}
	resp.Slides = SlideInfo{
		Count:           len(resp.ImageURLs),
		IntervalSeconds: int64(catalog.SlideInterval / time.Second),
		AutoAdvance:     len(resp.ImageURLs) > 1,
	}
	return resp
}
