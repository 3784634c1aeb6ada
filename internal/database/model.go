package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table. The email uniqueness invariant
// is enforced by the unique constraint; soft deletion is handled by bun via
// the soft_delete tag, so ordinary selects exclude deleted rows.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name              string    `bun:"name,notnull"`
	Email             string    `bun:"email,notnull,unique"`
	PasswordHash      string    `bun:"password_hash,notnull"`
	Verified          bool      `bun:"verified,notnull,default:false"`
	VerificationToken *string   `bun:"verification_token"`
	Role              string    `bun:"role,notnull,default:'regular'"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt         time.Time `bun:"deleted_at,soft_delete,nullzero"`
}
