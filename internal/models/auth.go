package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest identifies a user by institutional email. There is no
// password; the portal performs no credential verification.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse returns the issued session token and resolved user.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        User      `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// SessionClaims is the JWT payload for session tokens. It carries everything
// the access policy needs so every operation receives the actor explicitly.
type SessionClaims struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       UserRole   `json:"role"`
	Department Department `json:"department"`
	jwt.RegisteredClaims
}

// Actor returns the acting user described by the claims.
func (c *SessionClaims) Actor() User {
	return User{
		ID:         c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		Role:       c.Role,
		Department: c.Department,
	}
}
