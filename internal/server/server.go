// Package server wires the HTTP surface: dataset uploads, health and
// metrics endpoints, and the cached pipeline processor behind them.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/puneet-chandna/water-brakes/internal/config"
	"github.com/puneet-chandna/water-brakes/internal/health"
	"github.com/puneet-chandna/water-brakes/internal/metrics"
	imw "github.com/puneet-chandna/water-brakes/internal/middleware"
)

// Run blocks serving HTTP until ctx is canceled or the listener fails.
func Run(ctx context.Context, cfg config.Config, log zerolog.Logger, proc *Processor, m *metrics.Provider) error {
	r := chi.NewRouter()
	r.Use(imw.Recover(log))
	r.Use(imw.Logging(log))
	r.Use(imw.CORS())

	r.Get("/healthz", health.Liveness())
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Post("/v1/datasets", datasetHandler(proc, cfg.Pipeline))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http listen")
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
