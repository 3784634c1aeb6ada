package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Token scopes. User tokens authenticate end-user sessions; client tokens
// authenticate machine callers (the client-credentials grant).
const (
	ScopeUser   = "user"
	ScopeClient = "client"
)

// TokenClaims represents the claims stored in a PASETO token
type TokenClaims struct {
	Scope     string    `json:"scope"`
	Subject   string    `json:"sub"` // user id or client id
	Email     string    `json:"email,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
	}, nil
}

// CreateUserToken generates a user-scoped access token.
func (s *PasetoService) CreateUserToken(userID uuid.UUID, email string, duration time.Duration) (string, error) {
	return s.createToken(ScopeUser, userID.String(), email, duration)
}

// CreateClientToken generates a client-scoped token for machine callers.
func (s *PasetoService) CreateClientToken(clientID string, duration time.Duration) (string, error) {
	return s.createToken(ScopeClient, clientID, "", duration)
}

func (s *PasetoService) createToken(scope, subject, email string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetSubject(subject)
	token.SetString("scope", scope)
	if email != "" {
		token.SetString("email", email)
	}

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken validates a PASETO v4.local token and returns the claims
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; distinguish expired from invalid
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	scope, err := token.GetString("scope")
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject, err := token.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Email is only present on user tokens
	email, _ := token.GetString("email")

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		Scope:     scope,
		Subject:   subject,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
