package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

// ResetTokenRepo implements ResetTokenRepository using PostgreSQL.
type ResetTokenRepo struct {
	db  *DB
	now func() time.Time
}

// NewResetTokenRepo constructs a reset token repository.
func NewResetTokenRepo(db *DB) *ResetTokenRepo {
	return &ResetTokenRepo{db: db, now: time.Now}
}

var _ ports.ResetTokenRepository = (*ResetTokenRepo)(nil)

// Create inserts a new reset token row.
func (r *ResetTokenRepo) Create(ctx context.Context, t *core.ResetToken) error {
	const q = `
INSERT INTO password_reset_tokens (id, token_hash, user_id, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.TokenHash, t.UserID, t.ExpiresAt, t.CreatedAt)
	return err
}

// GetUnusedByHash returns the unused token matching tokenHash.
func (r *ResetTokenRepo) GetUnusedByHash(ctx context.Context, tokenHash string) (*core.ResetToken, error) {
	const q = `
SELECT id, token_hash, user_id, expires_at, used_at, created_at
FROM password_reset_tokens
WHERE token_hash = $1 AND used_at IS NULL`
	row := r.db.Pool.QueryRow(ctx, q, tokenHash)
	var t core.ResetToken
	if err := row.Scan(&t.ID, &t.TokenHash, &t.UserID, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to scan reset token: %w", err)
	}
	return &t, nil
}

// MarkUsed sets used_at for the given token. Marking an already-used token
// again is a no-op, not an error.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE password_reset_tokens
SET used_at = $2
WHERE id = $1 AND used_at IS NULL`
	_, err := r.db.Pool.Exec(ctx, q, id, r.now())
	return err
}

// InvalidateForUser marks all currently-unused tokens of a user as used.
func (r *ResetTokenRepo) InvalidateForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `
UPDATE password_reset_tokens
SET used_at = $2
WHERE user_id = $1 AND used_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, userID, r.now())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
