// Package server is the composition root: it builds the store, service and
// handlers from a Config, mounts them on a chi router, and runs the HTTP
// server until a shutdown signal arrives.
//
//	config → idgen.Generator → repository (memory | sqlite) → PersonService → PersonHandler
//
// The store is created here exactly once and passed down by reference;
// there is no package-level state anywhere in the request path.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/pessoas/internal/config"
	"github.com/sakif/pessoas/internal/handler"
	"github.com/sakif/pessoas/internal/idgen"
	"github.com/sakif/pessoas/internal/middleware"
	"github.com/sakif/pessoas/internal/model"
	"github.com/sakif/pessoas/internal/repository"
	"github.com/sakif/pessoas/internal/repository/memory"
	sqliteRepo "github.com/sakif/pessoas/internal/repository/sqlite"
	"github.com/sakif/pessoas/internal/service"
)

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	people *service.PersonService
	closer io.Closer // non-nil when the repository holds resources
}

// New wires every dependency described by cfg.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	ids, err := idgen.New(cfg.Store.IDScheme)
	if err != nil {
		return nil, err
	}

	repo, closer, err := newRepository(cfg.Store.Backend, ids)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		people: service.NewPersonService(repo, ids, cfg.Limits, logger),
		closer: closer,
	}

	s.setupRoutes()

	if cfg.Store.Seed {
		if err := s.seed(context.Background()); err != nil {
			s.Close()
			return nil, fmt.Errorf("seeding store: %w", err)
		}
	}

	logger.Info("store ready",
		slog.String("backend", cfg.Store.Backend),
		slog.String("id_scheme", ids.Name()),
	)
	return s, nil
}

func newRepository(backend string, ids idgen.Generator) (repository.PersonRepository, io.Closer, error) {
	switch backend {
	case "", config.BackendMemory:
		return memory.New(ids), nil, nil
	case config.BackendSQLite:
		db, err := sqliteRepo.New(ids)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// seed inserts the bootstrap record.
func (s *Server) seed(ctx context.Context) error {
	name, nick, birth := "Jefferson", "Jeff", "1984-06-06"
	p, err := s.people.Create(ctx, model.PersonInput{
		Name:      &name,
		Nick:      &nick,
		BirthDate: &birth,
		Stack:     []string{"Rust"},
	})
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap person created", slog.String("id", p.ID))
	return nil
}

// setupRoutes configures middleware and routes.
//
// MIDDLEWARE ORDER:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts the client IP from proxy headers
// 3. Logger: logs each request with its request id
// 4. Recoverer: turns a panic into a 500 instead of killing the process
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	personHandler := handler.NewPersonHandler(s.people, s.config.Server.MaxBodyBytes, s.logger)
	personHandler.RegisterRoutes(s.router)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the repository's resources, if it has any.
func (s *Server) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Start runs the HTTP server and handles graceful shutdown.
//
// On SIGINT/SIGTERM it stops accepting connections and gives in-flight
// requests ShutdownTimeout to finish. A request abandoned by its client
// does not undo a create that already completed.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
