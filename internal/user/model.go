package user

import (
	"time"

	"github.com/google/uuid"
)

// Role values. Promotion to admin requires a verified account.
const (
	RoleRegular = "regular"
	RoleAdmin   = "admin"
)

// User is the domain representation of an account. PasswordHash and
// VerificationToken never appear in API responses; see Transformer.
type User struct {
	ID                uuid.UUID
	Name              string
	Email             string
	PasswordHash      string
	Verified          bool
	VerificationToken *string
	Role              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDeleted reports whether the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// EqualMutable compares the fields an update can touch. It decides whether
// a candidate record carries any actual change relative to the stored one,
// after all pending mutations have been applied.
func (u *User) EqualMutable(other *User) bool {
	if u.Name != other.Name ||
		u.Email != other.Email ||
		u.PasswordHash != other.PasswordHash ||
		u.Verified != other.Verified ||
		u.Role != other.Role {
		return false
	}
	if (u.VerificationToken == nil) != (other.VerificationToken == nil) {
		return false
	}
	if u.VerificationToken != nil && *u.VerificationToken != *other.VerificationToken {
		return false
	}
	return true
}
