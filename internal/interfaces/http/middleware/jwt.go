package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sari-store/storefront/internal/infrastructure/auth"
	"github.com/sari-store/storefront/internal/infrastructure/logger"
	"github.com/sari-store/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Admin context keys
const (
	AdminClaimsKey = "admin_claims"
	AdminIDKey     = "admin_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// LoginPath is where an unauthenticated admin obtains a token
const LoginPath = "/api/v1/auth/login"

// Authenticator validates a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AdminAuth rejects requests without a valid, unrevoked admin token and
// stores the claims for downstream handlers.
func AdminAuth(authenticator Authenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Authentication required, log in at "+LoginPath, nil)
			return
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortUnauthorized(c, log, dto.ErrCodeTokenExpired, "Token has expired", err)
			case errors.Is(err, auth.ErrTokenBlacklisted):
				abortUnauthorized(c, log, dto.ErrCodeTokenRevoked, "Token has been revoked", err)
			default:
				abortUnauthorized(c, log, dto.ErrCodeTokenInvalid, "Invalid token", err)
			}
			return
		}

		c.Set(AdminClaimsKey, claims)
		c.Set(AdminIDKey, claims.AdminID)
		c.Request = c.Request.WithContext(logger.WithAdminID(c.Request.Context(), claims.AdminID))

		log.Debug("Admin authenticated", zap.String("admin_id", claims.AdminID))
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, code, message string, err error) {
	fields := []zap.Field{zap.String("code", code), zap.String("path", c.Request.URL.Path)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log.Warn("Admin authentication failed", fields...)

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetAdminClaims retrieves the admin claims set by AdminAuth
func GetAdminClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(AdminClaimsKey); exists {
		if ac, ok := claims.(*auth.Claims); ok {
			return ac
		}
	}
	return nil
}

// GetAdminID retrieves the authenticated admin id
func GetAdminID(c *gin.Context) string {
	return c.GetString(AdminIDKey)
}
