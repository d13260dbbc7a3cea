package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "ID_SCHEME", "SEED_BOOTSTRAP", "LOG_LEVEL", "MAX_NAME_LENGTH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 100, cfg.Limits.MaxNameLength)
	assert.Equal(t, 32, cfg.Limits.MaxStackItemLength)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("ID_SCHEME", "ulid")
	t.Setenv("SEED_BOOTSTRAP", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_NICK_LENGTH", "32")
	t.Setenv("SEARCH_LIMIT", "10")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "ulid", cfg.Store.IDScheme)
	assert.True(t, cfg.Store.Seed)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, 32, cfg.Limits.MaxNickLength)
	assert.Equal(t, 10, cfg.Limits.SearchLimit)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "eighty"},
		{"PORT", "70000"},
		{"STORE_BACKEND", "postgres"},
		{"ID_SCHEME", "snowflake"},
		{"SEED_BOOTSTRAP", "maybe"},
		{"LOG_LEVEL", "chatty"},
		{"MAX_STACK_ITEM_LENGTH", "0"},
		{"SHUTDOWN_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
