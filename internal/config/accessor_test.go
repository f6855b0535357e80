package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessorPrefersEnvironmentOverDocument(t *testing.T) {
	t.Setenv("DATABASE_HOST", "env-host")

	accessor, err := Load([]byte("database:\n  host: doc-host\n"))
	require.NoError(t, err)

	value, ok := accessor.Get("database.host")
	require.True(t, ok)
	require.Equal(t, "env-host", value)
}

func TestAccessorFallsBackToDocument(t *testing.T) {
	accessor, err := Load([]byte("database:\n  host: doc-host\n  port: 5432\n"))
	require.NoError(t, err)

	value, ok := accessor.Get("database.host")
	require.True(t, ok)
	require.Equal(t, "doc-host", value)

	value, ok = accessor.Get("database.port")
	require.True(t, ok)
	require.Equal(t, "5432", value)
}

func TestAccessorMissingKeyReportsNotFound(t *testing.T) {
	accessor := NewAccessor()

	_, ok := accessor.Get("nothing.here")
	require.False(t, ok)
}
