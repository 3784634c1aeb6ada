package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redmonkez12/user-accounts-api/internal/user"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidClientCredentials = errors.New("invalid client credentials")
	ErrEmailNotVerified         = errors.New("email not verified, please check your inbox")
)

// AuthTokens is the token payload returned by the login and client grants.
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service issues tokens. The user grant authenticates an account with its
// password; the client grant authenticates a machine caller with the
// configured id/secret pair.
type Service struct {
	userRepo            user.Repository
	tokenService        TokenService
	passwords           PasswordVerifier
	clientID            string
	clientSecret        string
	accessTokenDuration time.Duration
	clientTokenDuration time.Duration
}

func NewService(
	userRepo user.Repository,
	tokenService TokenService,
	passwords PasswordVerifier,
	clientID string,
	clientSecret string,
	accessTokenDuration time.Duration,
	clientTokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:            userRepo,
		tokenService:        tokenService,
		passwords:           passwords,
		clientID:            clientID,
		clientSecret:        clientSecret,
		accessTokenDuration: accessTokenDuration,
		clientTokenDuration: clientTokenDuration,
	}
}

// Login authenticates a user by email and password and returns an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwords.Compare(existing.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !existing.Verified {
		return nil, ErrEmailNotVerified
	}

	accessToken, err := s.tokenService.CreateUserToken(existing.ID, existing.Email, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// ClientToken exchanges client credentials for a client-scoped token.
func (s *Service) ClientToken(ctx context.Context, clientID, clientSecret string) (*AuthTokens, error) {
	idMatch := subtle.ConstantTimeCompare([]byte(clientID), []byte(s.clientID)) == 1
	secretMatch := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(s.clientSecret)) == 1
	if !idMatch || !secretMatch {
		return nil, ErrInvalidClientCredentials
	}

	token, err := s.tokenService.CreateClientToken(clientID, s.clientTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create client token: %w", err)
	}

	return &AuthTokens{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.clientTokenDuration.Seconds()),
	}, nil
}
