package cover

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

// polygonCover returns the border tiles of every ring as a set plus the
// interior tiles found by an even-odd horizontal scanline fill. The first
// ring is the exterior, the rest are holes (GeoJSON convention); because
// the fill pairs crossings over the union of all rings, holes subtract
// naturally.
//
// Self-intersecting rings are tolerated: the same pairing logic runs and
// produces an approximate interior rather than an error.
func polygonCover(rings orb.Polygon, z int) (tileSet, []tile.Tile) {
	set := tileSet{}
	var intersections []gridCoord
	var interior []tile.Tile

	for _, r := range rings {
		borders, ring := lineCover(r, z)
		for t := range borders {
			set[t] = struct{}{}
		}

		// slide a wrapped 3-point window over the ring; the middle point is
		// a scanline crossing when its y is neither a local extremum nor
		// part of a horizontal run
		n := len(ring)
		for m := 0; m < n; m++ {
			ky := ring[(m+n-2)%n].Y
			y := ring[(m+n-1)%n].Y
			my := ring[m].Y

			if (y > ky || y > my) && (y < ky || y < my) && y != my {
				intersections = append(intersections, ring[(m+n-1)%n])
			}
		}
	}

	sort.Slice(intersections, func(i, j int) bool {
		a, b := intersections[i], intersections[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	// fill between consecutive pairs; an odd trailing crossing is ignored
	for i := 0; i+1 < len(intersections); i += 2 {
		y := intersections[i].Y
		for x := intersections[i].X + 1; x < intersections[i+1].X; x++ {
			t := tile.Tile{X: x, Y: y, Z: z}
			if _, ok := set[t]; !ok {
				interior = append(interior, t)
			}
		}
	}

	return set, interior
}
