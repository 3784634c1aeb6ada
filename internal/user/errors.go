package user

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers unknown ids, soft-deleted records and stale
	// verification tokens alike.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned by the repository when the unique
	// constraint on email rejects a write.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrNoChange rejects an update whose candidate record is identical
	// to the stored one.
	ErrNoChange = errors.New("update must change at least one field")

	// ErrRoleChangeUnverified rejects a role change on an unverified account.
	ErrRoleChangeUnverified = errors.New("only verified users may change role")

	// ErrAlreadyVerified rejects resending a verification email to a
	// verified account.
	ErrAlreadyVerified = errors.New("this user is already verified")
)

// ValidationError carries field-level detail about rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

// DeliveryError reports that every mail delivery attempt failed. It is
// surfaced only after the retry budget is exhausted.
type DeliveryError struct {
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mail delivery failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
