package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidResetToken covers malformed, expired, and already used links.
var ErrInvalidResetToken = errors.New("invalid password reset token")

// ResetSubject identifies the account a reset link is minted for.
type ResetSubject struct {
	UserID       uint
	Email        string
	PasswordHash string
}

// MintResetToken signs a reset token whose key is bound to the current
// password hash, so the token stops verifying once the password changes.
func MintResetToken(cfg config.JWTConfig, now time.Time, subject ResetSubject) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if subject.UserID == 0 || strings.TrimSpace(subject.Email) == "" {
		return "", fmt.Errorf("reset subject is incomplete")
	}

	claims := ResetTokenClaims{
		UserID:  subject.UserID,
		Email:   strings.ToLower(strings.TrimSpace(subject.Email)),
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatUint(uint64(subject.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ResetTokenTTL())),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(resetKey(cfg.Secret, subject.PasswordHash))
	if err != nil {
		return "", fmt.Errorf("signing reset token: %w", err)
	}
	return signed, nil
}

// VerifyResetToken checks tokenString against the account's current state.
func VerifyResetToken(cfg config.JWTConfig, tokenString string, subject ResetSubject) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	claims := &ResetTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return resetKey(cfg.Secret, subject.PasswordHash), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResetToken, err)
	}
	if claims.Purpose != resetPurpose || claims.UserID != subject.UserID {
		return ErrInvalidResetToken
	}
	if !strings.EqualFold(claims.Email, strings.TrimSpace(subject.Email)) {
		return ErrInvalidResetToken
	}
	return nil
}

func resetKey(secret, passwordHash string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(resetPurpose))
	mac.Write([]byte{0})
	mac.Write([]byte(passwordHash))
	return mac.Sum(nil)
}
