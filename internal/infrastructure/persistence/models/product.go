package models

import (
	"time"

	"github.com/sari-store/storefront/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity
type ProductModel struct {
	BaseModel
	Title     string     `gorm:"type:varchar(200);not null;default:''"`
	Price     string     `gorm:"type:varchar(32);not null;default:''"`
	Category  string     `gorm:"type:varchar(100);not null;default:'';index"`
	ImageURLs StringList `gorm:"column:image_urls;type:text;not null;default:'[]'"`
	ImageURL  string     `gorm:"column:image_url;type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product. Legacy rows
// that only carry image_url are normalized.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:        idString(m.ID),
		Title:     m.Title,
		Price:     m.Price,
		Category:  m.Category,
		ImageURLs: append([]string(nil), m.ImageURLs...),
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
	p.Normalize()
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = parseID(p.ID)
	m.CreatedAt = p.CreatedAt
	m.Title = p.Title
	m.Price = p.Price
	m.Category = p.Category
	m.ImageURLs = StringList(append([]string(nil), p.ImageURLs...))
	m.ImageURL = p.ImageURL
}

// PrepareCreate assigns the id and timestamps of a new row
func (m *ProductModel) PrepareCreate(now time.Time) {
	m.assignID(now)
}
