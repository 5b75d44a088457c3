package tokenizer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lumenpulse/anchor/core"
)

func TestJWTTokenizer_IssueParse(t *testing.T) {
	tk := NewJWTTokenizer([]byte("secret"), time.Hour)

	session := &core.Session{
		UserID:    uuid.New(),
		PublicKey: "GKEY",
		AuthType:  core.AuthTypeStellar,
	}

	token, err := tk.Issue(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tk.Parse(token)
	require.NoError(t, err)
	require.Equal(t, session.UserID, got.UserID)
	require.Equal(t, "GKEY", got.PublicKey)
	require.Equal(t, core.AuthTypeStellar, got.AuthType)
	require.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt, 5*time.Second)
}

func TestJWTTokenizer_RejectsWrongSecret(t *testing.T) {
	tk := NewJWTTokenizer([]byte("secret"), time.Hour)
	other := NewJWTTokenizer([]byte("different"), time.Hour)

	token, err := tk.Issue(&core.Session{UserID: uuid.New(), AuthType: core.AuthTypePassword})
	require.NoError(t, err)

	_, err = other.Parse(token)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestJWTTokenizer_RejectsExpired(t *testing.T) {
	tk := NewJWTTokenizer([]byte("secret"), time.Hour)

	issued := time.Now()
	tk.now = func() time.Time { return issued }

	token, err := tk.Issue(&core.Session{UserID: uuid.New(), AuthType: core.AuthTypePassword})
	require.NoError(t, err)

	tk.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tk.Parse(token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWTTokenizer_RejectsGarbage(t *testing.T) {
	tk := NewJWTTokenizer([]byte("secret"), time.Hour)

	_, err := tk.Parse("not.a.jwt")
	require.ErrorIs(t, err, core.ErrInvalidToken)
	_, err = tk.Parse("")
	require.ErrorIs(t, err, core.ErrInvalidToken)
}
