package identity

import "time"

// LoginInput is the body of POST /auth/login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
	Admin       AdminInfo `json:"admin"`
}

// AdminInfo identifies the logged-in admin
type AdminInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
