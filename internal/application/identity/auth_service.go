// Package identity authenticates storefront admins.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/sari-store/storefront/internal/domain/identity"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/auth"
	"github.com/sari-store/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Authentication errors
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrTokenRevoked       = shared.WrapDomainError("UNAUTHORIZED", "Token has been revoked", auth.ErrTokenBlacklisted)
	ErrTokenInvalid       = shared.NewDomainError("UNAUTHORIZED", "Invalid or expired token")
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcrypt.MinCost)

// AuthService handles admin login and logout
type AuthService struct {
	admins     identity.AdminRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	admins identity.AdminRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		admins:     admins,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login", telemetry.SpanAttrAdminEmail, email)
	defer span.End()

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to look up admin", zap.String("email", email), zap.Error(err))
			telemetry.RecordError(span, err)
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
		s.logger.Warn("Login attempt for unknown admin", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if !admin.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(admin.ID, admin.Email)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to generate authentication token", err)
	}

	s.logger.Info("Admin logged in", zap.String("admin_id", admin.ID), zap.String("email", admin.Email))
	return &LoginResult{
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		Admin:       AdminInfo{ID: admin.ID, Email: admin.Email},
	}, nil
}

// Authenticate validates a bearer token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(strings.TrimSpace(token))
	if err != nil {
		return nil, shared.WrapDomainError(ErrTokenInvalid.Code, ErrTokenInvalid.Message, err)
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		// An unreachable blacklist must not lock every admin out
		s.logger.Warn("Token blacklist check failed", zap.Error(err))
		return claims, nil
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("admin_id", claims.AdminID), zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to log out", err)
	}

	s.logger.Info("Admin logged out", zap.String("admin_id", claims.AdminID), zap.Duration("revoked_for", ttl))
	return nil
}

// EnsureAdmin creates the configured admin account when it does not exist.
// An existing account keeps its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	admin, err := identity.NewAdmin(email, hash)
	if err != nil {
		return err
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil
		}
		return err
	}

	s.logger.Info("Seeded admin account", zap.String("email", email))
	return nil
}
