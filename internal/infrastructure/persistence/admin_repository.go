package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sari-store/storefront/internal/domain/identity"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAdminRepository implements identity.AdminRepository using GORM
type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates a new GormAdminRepository
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// FindByEmail finds an admin by normalized email
func (r *GormAdminRepository) FindByEmail(ctx context.Context, email string) (*identity.Admin, error) {
	var row models.AdminUserModel
	err := r.db.WithContext(ctx).
		Where("email = ?", identity.NormalizeEmail(email)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return row.ToDomain(), nil
}

// FindByID finds an admin by ID
func (r *GormAdminRepository) FindByID(ctx context.Context, id string) (*identity.Admin, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	var row models.AdminUserModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load admin %s: %w", id, err)
	}
	return row.ToDomain(), nil
}

// Create stores a new admin. Duplicate emails yield shared.ErrConflict.
func (r *GormAdminRepository) Create(ctx context.Context, admin *identity.Admin) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AdminUserModel{}).
		Where("email = ?", admin.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin email: %w", err)
	}
	if count > 0 {
		return shared.ErrConflict
	}

	var row models.AdminUserModel
	row.FromDomain(admin)
	row.PrepareCreate(time.Now())

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	admin.ID = row.ID.String()
	admin.CreatedAt = row.CreatedAt
	return nil
}

// Ensure GormAdminRepository implements identity.AdminRepository
var _ identity.AdminRepository = (*GormAdminRepository)(nil)
