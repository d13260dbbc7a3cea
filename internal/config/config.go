// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/pessoas/internal/idgen"
	"github.com/sakif/pessoas/internal/service"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config aggregates every setting the service reads.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Limits service.Limits
	Log    LogConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port            int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// StoreConfig picks the repository implementation and id scheme.
type StoreConfig struct {
	Backend  string
	IDScheme string

	// Seed inserts the bootstrap record at startup.
	Seed bool
}

// LogConfig holds the minimum log level.
type LogConfig struct {
	Level slog.Level
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			MaxBodyBytes:    64 << 10,
			ShutdownTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:  BackendMemory,
			IDScheme: idgen.SchemeXID,
		},
		Limits: service.DefaultLimits(),
		Log:    LogConfig{Level: slog.LevelInfo},
	}
}

// Load reads configuration from environment variables on top of Default.
// Callers wanting .env support load the file (godotenv) before calling Load.
func Load() (*Config, error) {
	cfg := Default()

	var err error
	if cfg.Server.Port, err = envInt("PORT", cfg.Server.Port); err != nil {
		return nil, err
	}
	if cfg.Server.MaxBodyBytes, err = envInt64("MAX_BODY_BYTES", cfg.Server.MaxBodyBytes); err != nil {
		return nil, err
	}
	if cfg.Server.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout); err != nil {
		return nil, err
	}

	cfg.Store.Backend = envString("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.IDScheme = envString("ID_SCHEME", cfg.Store.IDScheme)
	if cfg.Store.Seed, err = envBool("SEED_BOOTSTRAP", cfg.Store.Seed); err != nil {
		return nil, err
	}

	limits := &cfg.Limits
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"MAX_NAME_LENGTH", &limits.MaxNameLength},
		{"MAX_NICK_LENGTH", &limits.MaxNickLength},
		{"MAX_STACK_ITEM_LENGTH", &limits.MaxStackItemLength},
		{"MAX_STACK_ITEMS", &limits.MaxStackItems},
		{"SEARCH_LIMIT", &limits.SearchLimit},
	} {
		if *f.dst, err = envInt(f.key, *f.dst); err != nil {
			return nil, err
		}
	}

	if raw := envString("LOG_LEVEL", ""); raw != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL value: %q", raw)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with. It is exported so
// that command-line overrides can be checked after they are applied.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("invalid store backend %q (want %s or %s)", c.Store.Backend, BackendMemory, BackendSQLite)
	}
	if _, err := idgen.New(c.Store.IDScheme); err != nil {
		return err
	}
	l := c.Limits
	if l.MaxNameLength <= 0 || l.MaxNickLength <= 0 || l.MaxStackItemLength <= 0 || l.MaxStackItems < 0 {
		return fmt.Errorf("length limits must be positive")
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return n, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return d, nil
}
