package auth

import (
	"time"

	"github.com/google/uuid"
)

// TokenService defines the interface for token creation and validation.
// PasetoService (PASETO v4.local) is the only implementation.
type TokenService interface {
	CreateUserToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	CreateClientToken(clientID string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hash, plaintext string) bool
}
