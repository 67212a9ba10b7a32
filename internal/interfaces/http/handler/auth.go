package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sari-store/storefront/internal/application/identity"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
)

// Authentication is the auth service used by AuthHandler
type Authentication interface {
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService Authentication
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authentication) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LogoutResponse confirms a logout
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out"`
}

// Login godoc
// @ID           login
// @Summary      Admin login
// @Description  Authenticate the store admin with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Login credentials"
// @Success      200 {object} dto.Response{data=identity.LoginResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      Admin logout
// @Description  Revokes the bearer token until it would have expired
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=LogoutResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		h.Unauthorized(c, "Authentication required, log in at "+middleware.LoginPath)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LogoutResponse{Message: "Logged out"})
}
