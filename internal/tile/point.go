package tile

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	d2r = math.Pi / 180.0
	r2d = 180.0 / math.Pi
)

// PointToTileFraction projects a lon/lat point onto the tile grid at zoom z
// using the Web Mercator forward transform, returning fractional tile
// coordinates. x is wrapped into [0, 2^z) so longitudes beyond the
// antimeridian land on the grid consistently; y is left unwrapped, so an
// out-of-range latitude yields an out-of-range y.
func PointToTileFraction(p orb.Point, z int) (x, y float64) {
	sin := math.Sin(p.Lat() * d2r)
	z2 := math.Exp2(float64(z))
	x = z2 * (p.Lon()/360.0 + 0.5)
	y = z2 * (0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi)

	x = math.Mod(x, z2)
	if x < 0 {
		x += z2
	}
	return x, y
}

// PointToTile returns the tile containing p at zoom z.
func PointToTile(p orb.Point, z int) Tile {
	x, y := PointToTileFraction(p, z)
	return Tile{X: int(math.Floor(x)), Y: int(math.Floor(y)), Z: z}
}

// Point returns the lon/lat of the tile's upper-left corner via the
// inverse Mercator transform.
func (t Tile) Point() orb.Point {
	z2 := math.Exp2(float64(t.Z))
	lon := float64(t.X)/z2*360.0 - 180.0

	n := math.Pi - 2.0*math.Pi*float64(t.Y)/z2
	lat := r2d * math.Atan(math.Sinh(n))

	return orb.Point{lon, lat}
}

// Bound returns the tile's geographic extent, ordered so that
// west < east and south < north always hold.
func (t Tile) Bound() orb.Bound {
	ul := t.Point()
	lr := Tile{X: t.X + 1, Y: t.Y + 1, Z: t.Z}.Point()
	return orb.Bound{
		Min: orb.Point{math.Min(ul[0], lr[0]), math.Min(ul[1], lr[1])},
		Max: orb.Point{math.Max(ul[0], lr[0]), math.Max(ul[1], lr[1])},
	}
}

// Polygon returns the tile's extent as a closed 5-point ring, the shape
// used when tiles are serialized as GeoJSON features.
func (t Tile) Polygon() orb.Polygon {
	return t.Bound().ToPolygon()
}

// FromBound returns the smallest tile that fully contains b. Degenerate
// bounds (zero area) resolve at MaxZoom.
func FromBound(b orb.Bound) Tile {
	min := PointToTile(b.Min, 32)
	max := PointToTile(b.Max, 32)

	z := boundZoom(min, max)
	if z == 0 {
		return Tile{}
	}
	return Tile{X: min.X >> uint(32-z), Y: min.Y >> uint(32-z), Z: z}
}

// boundZoom finds the deepest zoom at which both corners still share a
// tile, scanning the 32-bit corner coordinates from the top bit down.
func boundZoom(min, max Tile) int {
	for z := 0; z < MaxZoom; z++ {
		mask := 1 << uint(32-(z+1))
		if min.X&mask != max.X&mask || min.Y&mask != max.Y&mask {
			return z
		}
	}
	return MaxZoom
}
