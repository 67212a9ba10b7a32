package models

import (
	"time"

	"github.com/sari-store/storefront/internal/domain/identity"
)

// AdminUserModel is the persistence model for storefront admins
type AdminUserModel struct {
	BaseModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts the persistence model to a domain Admin
func (m *AdminUserModel) ToDomain() *identity.Admin {
	return &identity.Admin{
		ID:           idString(m.ID),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Admin
func (m *AdminUserModel) FromDomain(a *identity.Admin) {
	m.ID = parseID(a.ID)
	m.CreatedAt = a.CreatedAt
	m.Email = a.Email
	m.PasswordHash = a.PasswordHash
}

// PrepareCreate assigns the id and timestamps of a new row
func (m *AdminUserModel) PrepareCreate(now time.Time) {
	m.assignID(now)
}
