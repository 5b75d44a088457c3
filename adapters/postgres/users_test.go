package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/lumenpulse/anchor/core"
)

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	now := time.Now()
	u := &core.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PasswordHash, "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PasswordHash, "", now, now).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), core.ErrEmailTaken)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	id := uuid.New()
	now := time.Now()
	cols := []string{"id", "email", "password_hash", "stellar_public_key", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, "user@example.com", "hash", "", now, now))
	u, err := r.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "user@example.com", u.Email)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, core.ErrUserNotFound)

	// Infrastructure failures must not masquerade as a missing user.
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("user@example.com").
		WillReturnError(errors.New("connection reset"))
	_, err = r.GetByEmail(ctx, "user@example.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, core.ErrUserNotFound)
	require.ErrorContains(t, err, "connection reset")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByPublicKey(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	id := uuid.New()
	now := time.Now()
	cols := []string{"id", "email", "password_hash", "stellar_public_key", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT .+ FROM users WHERE stellar_public_key = \$1`).
		WithArgs("GKEY").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, "", "", "GKEY", now, now))
	u, err := r.GetByPublicKey(ctx, "GKEY")
	require.NoError(t, err)
	require.Equal(t, "GKEY", u.StellarPublicKey)
	require.Empty(t, u.Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Save(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	u := &core.User{ID: uuid.New(), PasswordHash: "newhash", UpdatedAt: time.Now()}

	mock.ExpectExec(`UPDATE users`).
		WithArgs(u.ID, u.PasswordHash, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Save(ctx, u))

	mock.ExpectExec(`UPDATE users`).
		WithArgs(u.ID, u.PasswordHash, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.Save(ctx, u), core.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
