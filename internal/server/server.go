// Package server wires the HTTP API and owns the listener lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geoconsole/spatial-canvas/internal/config"
	"github.com/geoconsole/spatial-canvas/internal/health"
	"github.com/geoconsole/spatial-canvas/internal/middleware"
	"github.com/geoconsole/spatial-canvas/internal/router"
)

// Run blocks until ctx is canceled or the listener fails.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, api *router.API, ready health.ReadinessReporter) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(ready))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/features", api.Features())
	r.Post("/features/import", api.ImportFeatures())
	r.Get("/layers", api.Layers())
	r.Post("/layers/{id}/visibility", api.SetLayerVisibility())

	r.Post("/canvas/pointer", api.Pointer())
	r.Post("/canvas/mode", api.SetMode())
	r.Get("/canvas/select", api.Select())
	r.Get("/canvas/render", api.RenderFrame())

	r.Get("/query", api.Query())
	r.Get("/route", api.Route())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
