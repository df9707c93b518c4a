// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/plover/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Config is the configuration for the api server
type Config struct {
	// ListeningAddress is the address the api server listens on
	ListeningAddress string `yaml:"address" mapstructure:"address"`
}

// Validate validates the api configuration
func (c *Config) Validate() error {
	if c.ListeningAddress == "" {
		return ErrInvalidListeningAddress
	}
	return nil
}

//go:generate go tool moq -out api_moq.go . API
type API interface {
	// Run serves the api until the context is canceled or Shutdown is called
	Run(ctx context.Context) error
	// Shutdown gracefully stops the api server
	Shutdown(ctx context.Context) error
	// RegisterRoutes registers the given routes on the api router
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

// Route is a route of the api
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

var _ API = (*api)(nil)

type api struct {
	server *http.Server
	router chi.Router
}

// New creates a new api instance
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{
			Addr:              cfg.ListeningAddress,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		router: r,
	}
}

// Run serves the api.
// Blocks until the context is canceled or Shutdown is called.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	a.router.Use(middleware.RequestID)
	a.router.Use(logger.Middleware(ctx))
	a.router.Get("/", okHandler)

	cErr := make(chan error, 1)
	go func() {
		cErr <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown api server", "error", err)
			return err
		}
		return ctx.Err()
	case err := <-cErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if err != nil {
			log.Error("Failed to serve api", "error", err)
		}
		return err
	}
}

// RegisterRoutes registers the given routes on the api router.
// Unknown methods are rejected.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	log := logger.FromContext(ctx)
	for _, route := range routes {
		switch route.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			a.router.Method(route.Method, route.Path, route.Handler)
		case "Handle":
			a.router.HandleFunc(route.Path, route.Handler)
		default:
			log.Error("Unsupported method for route", "method", route.Method, "path", route.Path)
			return fmt.Errorf("unsupported method %q for route %q", route.Method, route.Path)
		}
		log.Debug("Route registered", "method", route.Method, "path", route.Path)
	}
	return nil
}

// Shutdown gracefully stops the api server
func (a *api) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown api server: %w", err)
	}
	return nil
}

// okHandler is the handler for the root endpoint, used as a liveness probe
func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
