package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/redmonkez12/user-accounts-api/internal/logging"
)

const (
	minPasswordLength = 6
	maxEmailLength    = 254

	// Resend delivery budget: 5 attempts with a fixed 100ms spacing.
	resendAttempts = 5
	resendInterval = 100 * time.Millisecond
)

// Mailer delivers verification emails. Retry policy is owned by the caller.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
}

// PasswordHasher is an opaque one-way hash function.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// CreateInput carries the fields accepted at account creation. Any role or
// verification state supplied by the client is ignored; new accounts always
// start unverified and regular.
type CreateInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UpdateInput is a sparse set of optional fields. nil means the client did
// not supply the field, which is distinct from supplying an empty value.
type UpdateInput struct {
	Name                 *string `json:"name"`
	Email                *string `json:"email"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
	Role                 *string `json:"role"`
}

// Service owns the user resource's state transitions and update-merge
// policy. It keeps no state of its own; the repository is the single
// source of truth.
type Service struct {
	repo   Repository
	mailer Mailer
	hasher PasswordHasher
	logger *logging.Logger
}

func NewService(repo Repository, mailer Mailer, hasher PasswordHasher, logger *logging.Logger) *Service {
	return &Service{
		repo:   repo,
		mailer: mailer,
		hasher: hasher,
		logger: logger,
	}
}

// List returns all non-deleted users. An empty result is valid.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.FindAll(ctx)
}

// Create validates the input, hashes the password and persists a new
// unverified regular user with a fresh verification token. The
// verification email is sent asynchronously, best effort; the resend
// endpoint covers delivery failures.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "is required"
	}
	s.validateEmail(ctx, in.Email, uuid.Nil, true, fields)
	s.validatePassword(in.Password, in.PasswordConfirmation, true, fields)

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	newUser := &User{
		Name:              in.Name,
		Email:             in.Email,
		PasswordHash:      passwordHash,
		Verified:          false,
		VerificationToken: &token,
		Role:              RoleRegular,
	}

	created, err := s.repo.Insert(ctx, newUser)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// The store is the arbiter of uniqueness; a concurrent
			// create can win between our check and the insert.
			return nil, &ValidationError{Fields: map[string]string{"email": "has already been taken"}}
		}
		return nil, err
	}

	go func() {
		emailCtx := context.Background()
		if err := s.mailer.SendVerificationEmail(emailCtx, created.Email, token); err != nil {
			s.logger.Warn("failed to send verification email", "email", created.Email, "error", err)
		}
	}()

	return created, nil
}

// Show loads one user by id. Soft-deleted records count as absent.
func (s *Service) Show(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the field-level merge policy in a fixed order: validate
// every supplied field, apply them to an in-memory candidate, enforce the
// role precondition, reject a no-op, then persist. A late failure leaves
// the stored record untouched because only the candidate was mutated.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.Email != nil {
		s.validateEmail(ctx, *in.Email, id, true, fields)
	}
	if in.Password != nil {
		confirmation := ""
		if in.PasswordConfirmation != nil {
			confirmation = *in.PasswordConfirmation
		}
		s.validatePassword(*in.Password, confirmation, true, fields)
	}
	if in.Role != nil && *in.Role != RoleRegular && *in.Role != RoleAdmin {
		fields["role"] = fmt.Sprintf("must be one of: %s, %s", RoleRegular, RoleAdmin)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	candidate := *current

	if in.Name != nil {
		candidate.Name = *in.Name
	}

	if in.Email != nil && *in.Email != current.Email {
		token, err := generateVerificationToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate verification token: %w", err)
		}
		candidate.Verified = false
		candidate.VerificationToken = &token
		candidate.Email = *in.Email
	}

	if in.Password != nil {
		passwordHash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		candidate.PasswordHash = passwordHash
	}

	if in.Role != nil {
		// An email change earlier in this request resets verification,
		// which also forfeits the right to change role.
		if !candidate.Verified {
			return nil, ErrRoleChangeUnverified
		}
		candidate.Role = *in.Role
	}

	if candidate.EqualMutable(current) {
		return nil, ErrNoChange
	}

	updated, err := s.repo.Update(ctx, &candidate)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, &ValidationError{Fields: map[string]string{"email": "has already been taken"}}
		}
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes the user and returns the record with its deletion
// timestamp set.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.SoftDelete(ctx, id)
}

// Verify consumes a verification token: the matching user becomes verified
// and the token is cleared, which makes a second call with the same token
// fail with ErrNotFound.
func (s *Service) Verify(ctx context.Context, token string) (*User, error) {
	u, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	u.Verified = true
	u.VerificationToken = nil

	return s.repo.Update(ctx, u)
}

// ResendVerification re-delivers the verification email for an unverified
// user, retrying the send up to the fixed attempt budget. The call blocks
// until a send succeeds or the budget is exhausted; only the last failure
// is surfaced.
func (s *Service) ResendVerification(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if u.Verified {
		return ErrAlreadyVerified
	}
	if u.VerificationToken == nil {
		return fmt.Errorf("unverified user %s has no verification token", u.ID)
	}
	token := *u.VerificationToken

	var lastErr error
	backoff := retry.WithMaxRetries(resendAttempts-1, retry.NewConstant(resendInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := s.mailer.SendVerificationEmail(ctx, u.Email, token); sendErr != nil {
			lastErr = sendErr
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("verification email delivery exhausted retry budget",
			"email", u.Email, "attempts", resendAttempts, "error", lastErr)
		return &DeliveryError{Attempts: resendAttempts, Err: lastErr}
	}

	return nil
}

func (s *Service) validateEmail(ctx context.Context, email string, selfID uuid.UUID, required bool, fields map[string]string) {
	if email == "" {
		if required {
			fields["email"] = "is required"
		}
		return
	}
	if len(email) > maxEmailLength {
		fields["email"] = "is too long"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "must be a valid email address"
		return
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to check email uniqueness", "error", err)
		}
		return
	}
	if existing.ID != selfID {
		fields["email"] = "has already been taken"
	}
}

func (s *Service) validatePassword(password, confirmation string, required bool, fields map[string]string) {
	if password == "" {
		if required {
			fields["password"] = "is required"
		}
		return
	}
	if len(password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
		return
	}
	if password != confirmation {
		fields["password"] = "confirmation does not match"
	}
}

// generateVerificationToken creates a cryptographically secure random token
func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
