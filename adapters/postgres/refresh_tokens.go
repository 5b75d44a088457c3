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

// RefreshTokenRepo implements RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepo struct {
	db  *DB
	now func() time.Time
}

// NewRefreshTokenRepo constructs a refresh token repository.
func NewRefreshTokenRepo(db *DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db, now: time.Now}
}

var _ ports.RefreshTokenRepository = (*RefreshTokenRepo)(nil)

// Create inserts a new refresh token row.
func (r *RefreshTokenRepo) Create(ctx context.Context, t *core.RefreshToken) error {
	const q = `
INSERT INTO refresh_tokens (id, token_hash, user_id, expires_at, device_info, ip_address, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.TokenHash, t.UserID, t.ExpiresAt, t.DeviceInfo, t.IPAddress, t.CreatedAt)
	return err
}

// GetByHash returns the token matching tokenHash regardless of state.
func (r *RefreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	const q = `
SELECT id, token_hash, user_id, expires_at, revoked_at, COALESCE(device_info, ''), COALESCE(ip_address, ''), created_at
FROM refresh_tokens
WHERE token_hash = $1`
	row := r.db.Pool.QueryRow(ctx, q, tokenHash)
	var t core.RefreshToken
	if err := row.Scan(&t.ID, &t.TokenHash, &t.UserID, &t.ExpiresAt, &t.RevokedAt, &t.DeviceInfo, &t.IPAddress, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to scan refresh token: %w", err)
	}
	return &t, nil
}

// Revoke sets revoked_at for the given token.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE refresh_tokens
SET revoked_at = $2
WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.db.Pool.Exec(ctx, q, id, r.now())
	return err
}

// RevokeAllForUser revokes every active token of a user.
func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `
UPDATE refresh_tokens
SET revoked_at = $2
WHERE user_id = $1 AND revoked_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, userID, r.now())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
