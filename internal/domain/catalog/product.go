package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlaceholderTitle is shown for products stored without a title
const PlaceholderTitle = "Product"

const maxTitleLength = 200

// Product is a catalog entry. Products are written only by the admin upload
// pipeline; every other component treats them as read-only.
type Product struct {
	ID       string
	Title    string
	Price    string // empty means price on request
	Category string // empty excludes the product from every facet except All
	// ImageURLs is ordered: the first entry is the cover and slide order is
	// significant.
	ImageURLs []string
	// ImageURL mirrors ImageURLs[0] for records written by older clients.
	ImageURL  string
	CreatedAt time.Time
}

// NewProduct creates a product ready to be stored. The store assigns ID and
// CreatedAt.
func NewProduct(title, price, category string, imageURLs []string) (*Product, error) {
	p := &Product{}
	if err := p.apply(title, price, category); err != nil {
		return nil, err
	}
	if len(imageURLs) == 0 {
		return nil, shared.NewDomainError("IMAGES_REQUIRED", "At least one image is required")
	}
	p.SetImages(imageURLs)
	return p, nil
}

// Update replaces the editable fields. A nil imageURLs keeps the current
// images.
func (p *Product) Update(title, price, category string, imageURLs []string) error {
	if err := p.apply(title, price, category); err != nil {
		return err
	}
	if imageURLs != nil {
		if len(imageURLs) == 0 {
			return shared.NewDomainError("IMAGES_REQUIRED", "At least one image is required")
		}
		p.SetImages(imageURLs)
	} else {
		p.SetImages(p.Images())
	}
	return nil
}

func (p *Product) apply(title, price, category string) error {
	if err := ValidateDetails(title, price, category); err != nil {
		return err
	}
	p.Title = strings.TrimSpace(title)
	p.Price = strings.TrimSpace(price)
	p.Category = strings.TrimSpace(category)
	return nil
}

// ValidateDetails checks the editable text fields of a product. Callers run it
// before any side effect such as an image upload.
func ValidateDetails(title, price, category string) error {
	if err := validateTitle(strings.TrimSpace(title)); err != nil {
		return err
	}
	if err := validatePrice(strings.TrimSpace(price)); err != nil {
		return err
	}
	if strings.TrimSpace(category) == "" {
		return shared.NewDomainError("CATEGORY_REQUIRED", "Please select a category or create a new one")
	}
	return nil
}

// SetImages stores urls as the ordered image list and keeps the legacy field in
// sync with the cover.
func (p *Product) SetImages(urls []string) {
	p.ImageURLs = append([]string(nil), urls...)
	p.ImageURL = ""
	if len(p.ImageURLs) > 0 {
		p.ImageURL = p.ImageURLs[0]
	}
}

// Images returns the ordered image list, falling back to the legacy single
// image for records that predate multi-image support.
func (p *Product) Images() []string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs
	}
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return nil
}

// CoverImage returns the first image URL, or "" when the product has none.
func (p *Product) CoverImage() string {
	if images := p.Images(); len(images) > 0 {
		return images[0]
	}
	return ""
}

// DisplayTitle returns the title or PlaceholderTitle when it is blank.
func (p *Product) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return PlaceholderTitle
}

// HasPrice reports whether the product carries a price.
func (p *Product) HasPrice() bool {
	return strings.TrimSpace(p.Price) != ""
}

// Normalize applies the legacy read rules in place: ImageURLs is populated from
// ImageURL when missing.
func (p *Product) Normalize() {
	if len(p.ImageURLs) == 0 && p.ImageURL != "" {
		p.ImageURLs = []string{p.ImageURL}
	}
}

func validateTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("TITLE_REQUIRED", "Please enter a title")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price string) error {
	if price == "" {
		return nil
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return shared.NewDomainError("INVALID_PRICE", "Price must be a number")
	}
	if d.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
