package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/user-accounts-api/internal/database"
)

// Repository is the persistence surface the service operates through.
// All lookups exclude soft-deleted records except where noted; the store
// is the sole arbiter of email uniqueness.
type Repository interface {
	FindAll(ctx context.Context) ([]*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	Insert(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (*User, error)
}

// BunRepository implements Repository on Postgres via bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// FindAll returns every non-deleted user. Bun's soft_delete tag keeps
// deleted rows out of ordinary selects.
func (r *BunRepository) FindAll(ctx context.Context) ([]*User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, fromDBUser(&dbUsers[i]))
	}
	return users, nil
}

func (r *BunRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return fromDBUser(dbUser), nil
}

func (r *BunRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return fromDBUser(dbUser), nil
}

func (r *BunRepository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("verification_token = ?", token).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by verification token: %w", err)
	}
	return fromDBUser(dbUser), nil
}

func (r *BunRepository) Insert(ctx context.Context, u *User) (*User, error) {
	dbUser := toDBUser(u)
	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return fromDBUser(dbUser), nil
}

// Update persists the mutable fields of u. The email unique constraint
// still applies, so a concurrent claim of the same address surfaces as
// ErrDuplicateEmail here.
func (r *BunRepository) Update(ctx context.Context, u *User) (*User, error) {
	dbUser := toDBUser(u)
	dbUser.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(dbUser).
		Column("name", "email", "password_hash", "verified", "verification_token", "role", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return fromDBUser(dbUser), nil
}

// SoftDelete marks the user deleted and returns the record including its
// deletion timestamp.
func (r *BunRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*User, error) {
	res, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	dbUser := new(database.User)
	err = r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		WhereAllWithDeleted().
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload deleted user: %w", err)
	}
	return fromDBUser(dbUser), nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func toDBUser(u *User) *database.User {
	dbUser := &database.User{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Verified:          u.Verified,
		VerificationToken: u.VerificationToken,
		Role:              u.Role,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if u.DeletedAt != nil {
		dbUser.DeletedAt = *u.DeletedAt
	}
	return dbUser
}

func fromDBUser(dbUser *database.User) *User {
	u := &User{
		ID:                dbUser.ID,
		Name:              dbUser.Name,
		Email:             dbUser.Email,
		PasswordHash:      dbUser.PasswordHash,
		Verified:          dbUser.Verified,
		VerificationToken: dbUser.VerificationToken,
		Role:              dbUser.Role,
		CreatedAt:         dbUser.CreatedAt,
		UpdatedAt:         dbUser.UpdatedAt,
	}
	if !dbUser.DeletedAt.IsZero() {
		deletedAt := dbUser.DeletedAt
		u.DeletedAt = &deletedAt
	}
	return u
}
