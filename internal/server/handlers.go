package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cache/coverstore"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/config"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cover"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/logger"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/observability"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

const maxBodyBytes = 8 << 20

type handlers struct {
	cfg    config.Config
	logger *slog.Logger
	store  *coverstore.Store
}

// coverRequest is the body of the POST /cover family of endpoints.
type coverRequest struct {
	Layer    string            `json:"layer"`
	Geometry *geojson.Geometry `json:"geometry"`
	Zoom     *cover.Zoom       `json:"zoom"`
}

func (h *handlers) parseCoverRequest(w http.ResponseWriter, r *http.Request) (coverRequest, error) {
	var req coverRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	if req.Geometry == nil {
		return req, errors.New("geometry is required")
	}
	if req.Zoom == nil {
		return req, errors.New("zoom is required")
	}
	if req.Zoom.Min > req.Zoom.Max {
		return req, fmt.Errorf("invalid zoom range: min %d greater than max %d", req.Zoom.Min, req.Zoom.Max)
	}
	if req.Zoom.Min < h.cfg.ZoomMin || req.Zoom.Max > h.cfg.ZoomMax {
		return req, fmt.Errorf("zoom out of range: want [%d, %d]", h.cfg.ZoomMin, h.cfg.ZoomMax)
	}
	return req, nil
}

// coverTiles serves the request from the cover cache when possible and
// computes plus stores the cover otherwise.
func (h *handlers) coverTiles(r *http.Request, req coverRequest) ([]tile.Tile, bool, error) {
	ctx := logger.WithLayer(r.Context(), req.Layer)
	g := req.Geometry.Geometry()
	zoom := *req.Zoom

	if h.store != nil {
		tiles, ok, err := h.store.Get(ctx, req.Layer, zoom, g)
		if err != nil {
			h.logger.Warn("cover cache read failed", "err", err)
		} else if ok {
			return tiles, true, nil
		}
	}

	start := time.Now()
	tiles, err := cover.Tiles(g, zoom)
	observability.ObserveCover(req.Geometry.Type, len(tiles), time.Since(start).Seconds(), err)
	if err != nil {
		return nil, false, err
	}

	if h.store != nil {
		opTimeout := h.cfg.CacheOpTimeout
		if opTimeout <= 0 {
			opTimeout = 250 * time.Millisecond
		}
		putCtx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		if err := h.store.Put(putCtx, req.Layer, zoom, g, tiles); err != nil {
			h.logger.Warn("cover cache write failed", "err", err)
		}
	}
	return tiles, false, nil
}

func (h *handlers) handleCover(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCoverRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tiles, cached, err := h.coverTiles(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tiles":  tiles,
		"count":  len(tiles),
		"cached": cached,
	})
}

func (h *handlers) handleCoverIndexes(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCoverRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tiles, cached, err := h.coverTiles(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	indexes := make([]string, len(tiles))
	for i, t := range tiles {
		indexes[i] = t.Quadkey()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"indexes": indexes,
		"count":   len(indexes),
		"cached":  cached,
	})
}

func (h *handlers) handleCoverGeoJSON(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCoverRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tiles, _, err := h.coverTiles(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fc := geojson.NewFeatureCollection()
	for _, t := range tiles {
		f := geojson.NewFeature(t.Polygon())
		f.Properties["x"] = t.X
		f.Properties["y"] = t.Y
		f.Properties["z"] = t.Z
		f.Properties["quadkey"] = t.Quadkey()
		fc.Append(f)
	}
	writeJSON(w, http.StatusOK, fc)
}

func tileFromPath(r *http.Request) (tile.Tile, error) {
	z, err := strconv.Atoi(chi.URLParam(r, "z"))
	if err != nil {
		return tile.Tile{}, fmt.Errorf("z: %w", err)
	}
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		return tile.Tile{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		return tile.Tile{}, fmt.Errorf("y: %w", err)
	}
	t := tile.New(x, y, z)
	if !t.Valid() {
		return tile.Tile{}, fmt.Errorf("tile %s out of range", t)
	}
	return t, nil
}

func (h *handlers) handleTileParent(w http.ResponseWriter, r *http.Request) {
	t, err := tileFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if t.Z == 0 {
		writeError(w, http.StatusBadRequest, errors.New("the root tile has no parent"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tile": t.Parent(tile.MinZoom)})
}

func (h *handlers) handleTileChildren(w http.ResponseWriter, r *http.Request) {
	t, err := tileFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	children := t.Children(tile.MaxZoom)
	if children == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("zoom %d is the deepest level", t.Z))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiles": children})
}

func (h *handlers) handleTileSiblings(w http.ResponseWriter, r *http.Request) {
	t, err := tileFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiles": t.Siblings()})
}

func (h *handlers) handleTileBBox(w http.ResponseWriter, r *http.Request) {
	t, err := tileFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b := t.Bound()
	writeJSON(w, http.StatusOK, map[string]any{
		"bbox": [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]},
	})
}

func (h *handlers) handleTileQuadkey(w http.ResponseWriter, r *http.Request) {
	t, err := tileFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quadkey": t.Quadkey()})
}

// handleBBoxTile returns the smallest tile fully containing a
// bbox=minlon,minlat,maxlon,maxlat query.
func (h *handlers) handleBBoxTile(w http.ResponseWriter, r *http.Request) {
	b, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t := tile.FromBound(b)
	writeJSON(w, http.StatusOK, map[string]any{
		"tile":    t,
		"quadkey": t.Quadkey(),
	})
}

func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.New("bbox: expected 4 comma-separated values: minlon,minlat,maxlon,maxlat")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox value %d: %w", i+1, err)
		}
		vals[i] = f
	}
	if vals[0] < -180 || vals[0] > 180 || vals[2] < -180 || vals[2] > 180 {
		return orb.Bound{}, errors.New("bbox: longitude must be in [-180, 180]")
	}
	if vals[1] < -90 || vals[1] > 90 || vals[3] < -90 || vals[3] > 90 {
		return orb.Bound{}, errors.New("bbox: latitude must be in [-90, 90]")
	}
	if vals[2] < vals[0] || vals[3] < vals[1] {
		return orb.Bound{}, errors.New("bbox: max must not be less than min")
	}
	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}

func (h *handlers) handleQuadkey(w http.ResponseWriter, r *http.Request) {
	t, err := tile.FromQuadkey(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tile": t})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
