// Package coverstore caches computed tile covers in Redis with a small
// in-process LRU in front, and tracks keys per layer so whole layers can
// be purged on invalidation.
package coverstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cache"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cache/keys"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cover"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/logger"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/observability"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

type Store struct {
	backend cache.Interface
	ttl     time.Duration
	front   *lru.Cache[string, []tile.Tile]
	log     zerolog.Logger
}

func New(backend cache.Interface, ttl time.Duration, frontSize int, log zerolog.Logger) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("coverstore: backend is required")
	}
	if frontSize <= 0 {
		frontSize = 1
	}
	front, err := lru.New[string, []tile.Tile](frontSize)
	if err != nil {
		return nil, fmt.Errorf("coverstore: front cache: %w", err)
	}
	return &Store{backend: backend, ttl: ttl, front: front, log: log}, nil
}

// Get returns the cached cover for the request, reporting whether it was
// found. A decode failure on a stored value is treated as a miss.
func (s *Store) Get(ctx context.Context, layer string, zoom cover.Zoom, g orb.Geometry) ([]tile.Tile, bool, error) {
	key, err := keys.Cover(layer, zoom.Min, zoom.Max, g)
	if err != nil {
		return nil, false, err
	}

	if tiles, ok := s.front.Get(key); ok {
		observability.IncCacheHit()
		return tiles, true, nil
	}

	vals, err := s.backend.MGet(ctx, []string{key})
	if err != nil {
		return nil, false, fmt.Errorf("cover lookup %q: %w", key, err)
	}
	raw, ok := vals[key]
	if !ok {
		observability.IncCacheMiss()
		return nil, false, nil
	}

	var tiles []tile.Tile
	if err := json.Unmarshal(raw, &tiles); err != nil {
		logger.FromContext(ctx, &s.log).Warn().
			Str("key", key).
			Err(err).
			Msg("stored cover is undecodable, treating as miss")
		observability.IncCacheMiss()
		return nil, false, nil
	}

	observability.IncCacheHit()
	s.front.Add(key, tiles)
	return tiles, true, nil
}

// Put stores a computed cover and records its key in the layer index.
func (s *Store) Put(ctx context.Context, layer string, zoom cover.Zoom, g orb.Geometry, tiles []tile.Tile) error {
	key, err := keys.Cover(layer, zoom.Min, zoom.Max, g)
	if err != nil {
		return err
	}
	data, err := json.Marshal(tiles)
	if err != nil {
		return fmt.Errorf("encode cover %q: %w", key, err)
	}

	if err := s.backend.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("store cover %q: %w", key, err)
	}
	if err := s.backend.SAdd(ctx, keys.LayerIndex(layer), key); err != nil {
		return fmt.Errorf("index cover %q: %w", key, err)
	}
	s.front.Add(key, tiles)
	return nil
}

// PurgeLayer deletes every cover key recorded for the layer plus the index
// itself, and returns how many keys were dropped.
func (s *Store) PurgeLayer(ctx context.Context, layer string) (int, error) {
	idx := keys.LayerIndex(layer)

	members, err := s.backend.SMembers(ctx, idx)
	if err != nil {
		return 0, fmt.Errorf("purge layer %q: %w", layer, err)
	}

	for _, key := range members {
		s.front.Remove(key)
	}

	del := append(members, idx)
	if err := s.backend.Del(ctx, del...); err != nil {
		return 0, fmt.Errorf("purge layer %q: %w", layer, err)
	}

	logger.FromContext(ctx, &s.log).Debug().
		Str("layer", keys.Layer(layer)).
		Int("keys", len(members)).
		Msg("layer purged")
	return len(members), nil
}
