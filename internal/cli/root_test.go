package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pessoas/internal/config"
)

func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	require.NoError(t, cmd.ParseFlags(args))
	return resolveConfig(cmd, opts)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "STORE_BACKEND", "ID_SCHEME", "SEED_BOOTSTRAP", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestResolveConfig_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := parse(t, "--port", "7070", "--id-scheme", "uuidv7", "--seed", "--log-level", "warn", "--env-file", "")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "uuidv7", cfg.Store.IDScheme)
	assert.True(t, cfg.Store.Seed)
	assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
}

func TestResolveConfig_UnsetFlagsKeepEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := parse(t, "--env-file", "")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
}

func TestResolveConfig_LoadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables already present, so unset them.
	for _, key := range []string{"PORT", "ID_SCHEME"} {
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=6060\nID_SCHEME=ulid\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ID_SCHEME")
	})

	cfg, err := parse(t, "--env-file", path)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "ulid", cfg.Store.IDScheme)
}

func TestResolveConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad backend", []string{"--backend", "postgres"}},
		{"bad scheme", []string{"--id-scheme", "snowflake"}},
		{"bad port", []string{"--port", "0"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"missing env file", []string{"--env-file", "/nonexistent/.env"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			args := tt.args
			if tt.name != "missing env file" {
				args = append(args, "--env-file", "")
			}
			_, err := parse(t, args...)
			assert.Error(t, err)
		})
	}
}
