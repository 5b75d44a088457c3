package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenpulse/anchor/internal/stellar"
)

const testSeed = "SAAACAQDAQCQMBYIBEFAWDANBYHRAEISCMKBKFQXDAMRUGY4DUPB6NKI"

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STELLAR_SERVER_SEED", testSeed)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddr)
	require.Equal(t, stellar.TestnetPassphrase, cfg.NetworkPassphrase)
	require.Equal(t, "localhost", cfg.AuthDomain)
	require.Empty(t, cfg.RedisURL)
	require.Zero(t, cfg.JWTTTL)
}

func TestLoad_RequiredVars(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STELLAR_SERVER_SEED", testSeed)
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STELLAR_SERVER_SEED", "")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_Network(t *testing.T) {
	setRequired(t)

	t.Setenv("STELLAR_NETWORK", "public")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, stellar.PublicPassphrase, cfg.NetworkPassphrase)

	t.Setenv("STELLAR_NETWORK", "mainnet")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_TTL(t *testing.T) {
	setRequired(t)

	t.Setenv("JWT_TTL", "30m")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.JWTTTL)

	t.Setenv("JWT_TTL", "soon")
	_, err = Load()
	require.Error(t, err)
}
