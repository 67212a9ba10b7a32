package identity

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/sari-store/storefront/internal/domain/shared"
)

// Admin is a storefront operator allowed to manage the catalog
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAdmin validates email and stores the already hashed password
func NewAdmin(email, passwordHash string) (*Admin, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is invalid")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password is required")
	}
	return &Admin{
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// AdminRepository persists admins
type AdminRepository interface {
	// FindByEmail returns shared.ErrNotFound when no admin has the email
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id string) (*Admin, error)
	// Create assigns ID and CreatedAt; duplicate emails yield shared.ErrConflict
	Create(ctx context.Context, admin *Admin) error
}
