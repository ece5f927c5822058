package cover

import (
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

// extrapolate merges a cover computed at zmax upward so that every zoom in
// [zmin, zmax] is covered. Walking from zmax down, any complete quad of
// four siblings collapses into its shared parent; the parent seeds the next
// coarser pass (or lands in the result once zmin is reached), while tiles
// without a complete quad survive at their own zoom. Only fully covered
// quads merge, so the area covered never shrinks.
func extrapolate(tiles []tile.Tile, zmin, zmax int) []tile.Tile {
	set := make(tileSet, len(tiles))
	for _, t := range tiles {
		set[t] = struct{}{}
	}

	var final []tile.Tile

	for z := zmax; z > zmin; z-- {
		parentSet := tileSet{}
		var parents []tile.Tile

		for _, t := range tiles {
			if t.X%2 != 0 || t.Y%2 != 0 {
				continue
			}
			t2 := tile.Tile{X: t.X + 1, Y: t.Y, Z: z}
			t3 := tile.Tile{X: t.X, Y: t.Y + 1, Z: z}
			t4 := tile.Tile{X: t.X + 1, Y: t.Y + 1, Z: z}

			if _, ok := set[t2]; !ok {
				continue
			}
			if _, ok := set[t3]; !ok {
				continue
			}
			if _, ok := set[t4]; !ok {
				continue
			}

			delete(set, t)
			delete(set, t2)
			delete(set, t3)
			delete(set, t4)

			parent := tile.Tile{X: t.X >> 1, Y: t.Y >> 1, Z: z - 1}
			if z-1 == zmin {
				final = append(final, parent)
			} else {
				parents = append(parents, parent)
				parentSet[parent] = struct{}{}
			}
		}

		// whatever was not merged away at this zoom is part of the result
		for _, t := range tiles {
			if _, ok := set[t]; ok {
				final = append(final, t)
			}
		}

		set = parentSet
		tiles = parents
	}

	return final
}
