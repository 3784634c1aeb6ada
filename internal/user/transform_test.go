package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser() *User {
	token := "tok-123"
	return &User{
		ID:                uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Name:              "Ann",
		Email:             "a@x.com",
		PasswordHash:      "$2a$10$secret",
		Verified:          false,
		VerificationToken: &token,
		Role:              RoleRegular,
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransform_FieldMapping(t *testing.T) {
	transformer := NewTransformer("http://localhost:8080")

	public := transformer.Transform(sampleUser())

	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", public.Identifier)
	assert.Equal(t, "Ann", public.Name)
	assert.Equal(t, "a@x.com", public.Email)
	assert.Equal(t, 0, public.IsVerified)
	assert.False(t, public.IsAdmin)
	assert.Equal(t, "2026-03-01T12:00:00Z", public.CreationDate)
	assert.Equal(t, "2026-03-02T12:00:00Z", public.LastChange)
	assert.Nil(t, public.DeleteDate)

	require.Len(t, public.Links, 1)
	assert.Equal(t, "self", public.Links[0].Rel)
	assert.Equal(t, "http://localhost:8080/users/6ba7b810-9dad-11d1-80b4-00c04fd430c8", public.Links[0].Href)
}

func TestTransform_VerifiedAdmin(t *testing.T) {
	transformer := NewTransformer("http://localhost:8080")

	u := sampleUser()
	u.Verified = true
	u.VerificationToken = nil
	u.Role = RoleAdmin

	public := transformer.Transform(u)
	assert.Equal(t, 1, public.IsVerified)
	assert.True(t, public.IsAdmin)
}

func TestTransform_DeleteDate(t *testing.T) {
	transformer := NewTransformer("http://localhost:8080")

	u := sampleUser()
	deletedAt := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	u.DeletedAt = &deletedAt

	public := transformer.Transform(u)
	require.NotNil(t, public.DeleteDate)
	assert.Equal(t, "2026-03-03T12:00:00Z", *public.DeleteDate)
}

// The public shape must never leak the hash or the verification token,
// whatever the JSON encoder does.
func TestTransform_NeverLeaksSecrets(t *testing.T) {
	transformer := NewTransformer("http://localhost:8080")

	raw, err := json.Marshal(transformer.Transform(sampleUser()))
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "tok-123")
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "verification")
}

func TestTransformAll_PreservesOrderAndEmpty(t *testing.T) {
	transformer := NewTransformer("http://localhost:8080")

	assert.Empty(t, transformer.TransformAll(nil))

	first := sampleUser()
	second := sampleUser()
	second.ID = uuid.New()
	second.Name = "Bea"

	out := transformer.TransformAll([]*User{first, second})
	require.Len(t, out, 2)
	assert.Equal(t, "Ann", out[0].Name)
	assert.Equal(t, "Bea", out[1].Name)
}

func TestOriginalAttribute(t *testing.T) {
	tests := []struct {
		external string
		internal string
		ok       bool
	}{
		{"identifier", "id", true},
		{"name", "name", true},
		{"email", "email", true},
		{"isVerified", "verified", true},
		{"isAdmin", "role", true},
		{"creationDate", "created_at", true},
		{"lastChange", "updated_at", true},
		{"deleteDate", "deleted_at", true},
		{"passwordHash", "", false},
		{"unknown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.external, func(t *testing.T) {
			internal, ok := OriginalAttribute(tt.external)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.internal, internal)
		})
	}
}
