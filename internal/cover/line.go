package cover

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

// gridCoord is an (x, y) tile coordinate inside a fixed zoom level.
type gridCoord struct {
	X, Y int
}

// lineCover walks every segment of line through tile space at zoom z with a
// supercover grid traversal, collecting each cell the segment passes
// through. Segments whose projected endpoints coincide contribute nothing.
//
// The returned ring records the traversal's y-transitions: the first cell of
// a segment is appended whenever it differs from the previous cell, later
// cells only when the step changed y. That reduced sequence is what the
// polygon scanline fill pairs up. A trailing entry whose y matches the first
// entry's y is dropped so a closed ring does not double-count its seam.
func lineCover(line []orb.Point, z int) (tileSet, []gridCoord) {
	set := tileSet{}
	var ring []gridCoord

	var x, y, prevX, prevY int
	visited := false

	for i := 0; i+1 < len(line); i++ {
		x0, y0 := tile.PointToTileFraction(line[i], z)
		x1, y1 := tile.PointToTileFraction(line[i+1], z)

		dx, dy := x1-x0, y1-y0
		if dx == 0 && dy == 0 {
			continue
		}

		sx, sy := 1, 1
		if dx < 0 {
			sx = -1
		}
		if dy < 0 {
			sy = -1
		}

		x = int(math.Floor(x0))
		y = int(math.Floor(y0))

		tMaxX := axisT(dx, x, x0)
		tMaxY := axisT(dy, y, y0)
		tdx := stepT(sx, dx)
		tdy := stepT(sy, dy)

		if !visited || x != prevX || y != prevY {
			set[tile.Tile{X: x, Y: y, Z: z}] = struct{}{}
			ring = append(ring, gridCoord{x, y})
			prevX, prevY = x, y
			visited = true
		}

		for tMaxX < 1 || tMaxY < 1 {
			if tMaxX < tMaxY {
				tMaxX += tdx
				x += sx
			} else {
				tMaxY += tdy
				y += sy
			}
			set[tile.Tile{X: x, Y: y, Z: z}] = struct{}{}
			if y != prevY {
				ring = append(ring, gridCoord{x, y})
			}
			prevX, prevY = x, y
		}
	}

	if len(ring) > 0 && y == ring[0].Y {
		ring = ring[:len(ring)-1]
	}
	return set, ring
}

// axisT is the parametric distance from the segment start to the first grid
// boundary on one axis; infinite when the segment does not move on it.
func axisT(d float64, cell int, frac float64) float64 {
	if d == 0 {
		return math.Inf(1)
	}
	lead := 0.0
	if d > 0 {
		lead = 1.0
	}
	return math.Abs((lead + float64(cell) - frac) / d)
}

// stepT is the parametric distance between grid boundaries on one axis.
func stepT(s int, d float64) float64 {
	if d == 0 {
		return math.Inf(1)
	}
	return math.Abs(float64(s) / d)
}
