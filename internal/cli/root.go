// Package cli implements the pessoas command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sakif/pessoas/internal/config"
	"github.com/sakif/pessoas/internal/server"
)

// RootOptions holds the flags that override environment configuration.
type RootOptions struct {
	Port     int
	Backend  string
	IDScheme string
	Seed     bool
	LogLevel string
	EnvFile  string
}

// NewRootCommand creates the root command. Running it starts the server.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pessoas",
		Short:         "In-memory people registry over HTTP",
		Long:          "Serves POST /pessoas, GET /pessoas/{id}, GET /pessoas?t= and GET /contagem-pessoas.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.Log.Level,
			}))

			srv, err := server.New(*cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return srv.Start()
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.Port, "port", "p", 0, "listen port (default: $PORT or 8080)")
	f.StringVar(&opts.Backend, "backend", "", "store backend: memory or sqlite (default: $STORE_BACKEND)")
	f.StringVar(&opts.IDScheme, "id-scheme", "", "id scheme: xid, uuidv7 or ulid (default: $ID_SCHEME)")
	f.BoolVar(&opts.Seed, "seed", false, "insert the bootstrap person at startup")
	f.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error (default: $LOG_LEVEL)")
	f.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")

	return cmd
}

// resolveConfig layers configuration: defaults, then .env and the
// environment, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && cmd.Flags().Changed("env-file") {
			return nil, fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Server.Port = opts.Port
	}
	if f.Changed("backend") {
		cfg.Store.Backend = opts.Backend
	}
	if f.Changed("id-scheme") {
		cfg.Store.IDScheme = opts.IDScheme
	}
	if f.Changed("seed") {
		cfg.Store.Seed = opts.Seed
	}
	if f.Changed("log-level") {
		if err := cfg.Log.Level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q", opts.LogLevel)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
