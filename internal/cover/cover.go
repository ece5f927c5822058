// Package cover computes the minimal set of slippy-map tiles covering a
// geometry at a zoom level or across a zoom range.
//
// Points project directly, lines run a supercover grid traversal, polygons
// add an even-odd scanline fill of their interior, and range covers are
// derived by merging complete sibling quads upward from the deepest zoom.
package cover

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

// tileSet deduplicates tiles by value; membership is O(1).
type tileSet map[tile.Tile]struct{}

// Tiles returns the tiles covering g over the given zoom selection. The
// cover is computed at zoom.Max and, for a range, extrapolated up to
// zoom.Min. Order of the returned tiles is unspecified.
//
// All six GeoJSON geometry variants are supported; anything else is
// rejected before any work happens, as is an inverted zoom range.
func Tiles(g orb.Geometry, zoom Zoom) ([]tile.Tile, error) {
	if err := zoom.validate(); err != nil {
		return nil, err
	}

	set := tileSet{}
	var tiles []tile.Tile

	switch geom := g.(type) {
	case orb.Point:
		set[tile.PointToTile(geom, zoom.Max)] = struct{}{}
	case orb.MultiPoint:
		for _, p := range geom {
			set[tile.PointToTile(p, zoom.Max)] = struct{}{}
		}
	case orb.LineString:
		set, _ = lineCover(geom, zoom.Max)
	case orb.MultiLineString:
		for _, ls := range geom {
			borders, _ := lineCover(ls, zoom.Max)
			set.merge(borders)
		}
	case orb.Polygon:
		set, tiles = polygonCover(geom, zoom.Max)
	case orb.MultiPolygon:
		for _, p := range geom {
			borders, interior := polygonCover(p, zoom.Max)
			set.merge(borders)
			tiles = append(tiles, interior...)
		}
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}

	for t := range set {
		tiles = append(tiles, t)
	}

	if zoom.Min != zoom.Max {
		tiles = extrapolate(tiles, zoom.Min, zoom.Max)
	}
	return tiles, nil
}

// Indexes returns the same cover as Tiles, quadkey-encoded.
func Indexes(g orb.Geometry, zoom Zoom) ([]string, error) {
	tiles, err := Tiles(g, zoom)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(tiles))
	for i, t := range tiles {
		keys[i] = t.Quadkey()
	}
	return keys, nil
}

// FeatureCollection returns the cover as GeoJSON features, one square
// polygon per tile with its coordinates and quadkey as properties.
func FeatureCollection(g orb.Geometry, zoom Zoom) (*geojson.FeatureCollection, error) {
	tiles, err := Tiles(g, zoom)
	if err != nil {
		return nil, err
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
	return fc, nil
}

func (s tileSet) merge(other tileSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}
