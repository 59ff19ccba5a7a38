package auth

import (
	"github.com/emporium-dev/emporium/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uint
	CustomerID *uint
	Role       enums.Role
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued at login.
type AccessTokenClaims struct {
	UserID     uint       `json:"user_id"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	Role       enums.Role `json:"role"`
	jwt.RegisteredClaims
}

const resetPurpose = "password_reset"

// ResetTokenClaims are carried by password reset links.
type ResetTokenClaims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}
