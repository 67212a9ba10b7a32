package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db, now: time.Now}
}

// FindAll returns every product, newest first
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	var row models.ProductModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return row.ToDomain(), nil
}

// Create stores p and assigns its ID and CreatedAt
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	var row models.ProductModel
	row.FromDomain(p)
	row.PrepareCreate(r.now())

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	p.ID = row.ID.String()
	p.CreatedAt = row.CreatedAt
	return nil
}

// Update replaces the editable fields of an existing product
func (r *GormProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	uid, err := uuid.Parse(p.ID)
	if err != nil {
		return shared.ErrNotFound
	}

	// A map so that empty strings are written too
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", uid).
		Updates(map[string]any{
			"title":      p.Title,
			"price":      p.Price,
			"category":   p.Category,
			"image_urls": models.StringList(p.ImageURLs),
			"image_url":  p.ImageURL,
			"updated_at": r.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return shared.ErrNotFound
	}

	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", uid)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
