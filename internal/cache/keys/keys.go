// Package keys builds deterministic cache keys for cover results.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultLayer names covers that were requested without a layer.
const DefaultLayer = "default"

// Cover returns the cache key for a geometry covered over [zmin, zmax]
// within a named layer. The geometry contributes an xxhash of its GeoJSON
// encoding, so the key stays bounded no matter how large the geometry is.
func Cover(layer string, zmin, zmax int, g orb.Geometry) (string, error) {
	data, err := geojson.NewGeometry(g).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal geometry: %w", err)
	}
	return fmt.Sprintf("cover:%s:z%d-%d:g=%016x", Layer(layer), zmin, zmax, xxhash.Sum64(data)), nil
}

// LayerIndex is the Redis set that tracks every cover key written for a
// layer, so invalidation can purge the layer wholesale.
func LayerIndex(layer string) string {
	return "coveridx:" + Layer(layer)
}

// Layer normalizes a layer name for use inside a key: ASCII whitespace
// collapses to '_', anything outside [A-Za-z0-9:_-] becomes '-', and runs
// of separators collapse.
func Layer(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLayer
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case isASCIIWhitespace(r):
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isASCIIWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
