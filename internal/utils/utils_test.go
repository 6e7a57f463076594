package utils

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildPostgresDSNFromEnv_Uses_Defaults_And_Overrides(t *testing.T) {
	t.Setenv("PG_HOST", "")
	t.Setenv("PG_PORT", "")
	t.Setenv("PG_USER", "")
	t.Setenv("PG_PASSWORD", "")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://postgres@localhost:5432/geodata?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "geo")
	t.Setenv("PG_PASSWORD", "p@ss")
	t.Setenv("PG_SSLMODE", "require")
	assert.Equal(t, "postgres://geo:p%40ss@db:5432/geodata?sslmode=require", BuildPostgresDSNFromEnv())
}

func Test_OpenRedisFromEnv_Returns_Nil_Without_Host(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, OpenRedisFromEnv())

	t.Setenv("REDIS_HOST", "127.0.0.1")
	t.Setenv("REDIS_DB", "3")
	rc := OpenRedisFromEnv()
	require.NotNil(t, rc)
	assert.Equal(t, "127.0.0.1:6379", rc.Options().Addr)
	assert.Equal(t, 3, rc.Options().DB)
	_ = rc.Close()
}

func Test_EnsureSelfSignedCert_Creates_Loadable_Pair_Once(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")

	require.NoError(t, EnsureSelfSignedCert(cert, key, "geodata.local"))
	_, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)

	first, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)
	require.NoError(t, EnsureSelfSignedCert(cert, key, "geodata.local"))
	second, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)
	assert.Equal(t, first.Certificate, second.Certificate)
}
