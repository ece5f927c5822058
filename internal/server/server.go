// Package server wires the HTTP API: cover computation endpoints, tile
// algebra lookups and the operational routes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cache/coverstore"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/config"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/health"
	imw "github.com/mohammed-shakir/slippy-spatial-cache/internal/middleware"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/observability"
)

// Deps are the backing services the router needs. Store and Pinger may be
// nil; the cover endpoints then compute every request and /readyz always
// reports ready.
type Deps struct {
	Store  *coverstore.Store
	Pinger health.Pinger
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Deps) http.Handler {
	h := &handlers{cfg: cfg, logger: logger, store: deps.Store}

	r := chi.NewRouter()
	r.Use(imw.Recover(logger))
	r.Use(imw.Logging(logger))
	r.Use(imw.CORS())

	r.Post("/cover", h.handleCover)
	r.Post("/cover/indexes", h.handleCoverIndexes)
	r.Post("/cover/geojson", h.handleCoverGeoJSON)

	r.Route("/tiles/{z}/{x}/{y}", func(r chi.Router) {
		r.Get("/parent", h.handleTileParent)
		r.Get("/children", h.handleTileChildren)
		r.Get("/siblings", h.handleTileSiblings)
		r.Get("/bbox", h.handleTileBBox)
		r.Get("/quadkey", h.handleTileQuadkey)
	})
	r.Get("/quadkeys/{key}", h.handleQuadkey)
	r.Get("/bboxtile", h.handleBBoxTile)

	r.Get("/healthz", health.Liveness())
	if deps.Pinger != nil {
		r.Get("/readyz", health.Readiness(deps.Pinger))
	} else {
		r.Get("/readyz", health.Liveness())
	}
	r.Handle("/metrics", observability.Handler())

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, logger, deps),
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
