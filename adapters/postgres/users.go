package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

var _ ports.UserRepository = (*UserRepo)(nil)

const userColumns = `id, COALESCE(email, ''), COALESCE(password_hash, ''), COALESCE(stellar_public_key, ''), created_at, updated_at`

// Create inserts a new user row. Empty identity fields are stored as NULL
// so the partial unique indexes only cover present identities.
func (r *UserRepo) Create(ctx context.Context, u *core.User) error {
	const q = `
INSERT INTO users (id, email, password_hash, stellar_public_key, created_at, updated_at)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Email, u.PasswordHash, u.StellarPublicKey, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return core.ErrEmailTaken
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// GetByPublicKey selects a user by Stellar public key.
func (r *UserRepo) GetByPublicKey(ctx context.Context, publicKey string) (*core.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE stellar_public_key = $1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, publicKey))
}

// Save persists the mutable fields of an existing user.
func (r *UserRepo) Save(ctx context.Context, u *core.User) error {
	const q = `
UPDATE users
SET password_hash = NULLIF($2, ''), updated_at = $3
WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, u.ID, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.StellarPublicKey, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
