// Package tile implements slippy-map (XYZ) tile arithmetic: quadkey
// encoding, parent/child/sibling navigation and the Web Mercator
// projection between lon/lat points and tile coordinates.
package tile

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// MaxZoom is the deepest zoom level of the pyramid.
	MaxZoom = 28
	// MinZoom is the default floor for parent traversal.
	MinZoom = 0
)

// Tile is a square cell (x, y, z) in the power-of-two tile pyramid.
// The zero value is the null tile (0, 0, 0), which is also the root.
type Tile struct {
	X, Y, Z int
}

func New(x, y, z int) Tile { return Tile{X: x, Y: y, Z: z} }

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Valid reports whether the tile lies inside the pyramid at its zoom.
func (t Tile) Valid() bool {
	return t.Z >= 0 && t.X >= 0 && t.Y >= 0 && t.X < 1<<uint(t.Z) && t.Y < 1<<uint(t.Z)
}

// MarshalJSON encodes the tile as the conventional [x, y, z] triple.
func (t Tile) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{t.X, t.Y, t.Z})
}

func (t *Tile) UnmarshalJSON(data []byte) error {
	var triple []int
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("malformed tile %s: %w", string(data), err)
	}
	if len(triple) != 3 {
		return fmt.Errorf("malformed tile %s: want an [x, y, z] triple", string(data))
	}
	*t = Tile{X: triple[0], Y: triple[1], Z: triple[2]}
	return nil
}

// Quadkey encodes the tile's path from the root as a base-4 string, one
// digit per zoom level, most significant bit first.
func (t Tile) Quadkey() string {
	var b strings.Builder
	b.Grow(t.Z)
	for z := t.Z; z > 0; z-- {
		d := byte('0')
		mask := 1 << uint(z-1)
		if t.X&mask != 0 {
			d++
		}
		if t.Y&mask != 0 {
			d += 2
		}
		b.WriteByte(d)
	}
	return b.String()
}

// FromQuadkey decodes a base-4 quadkey back into a tile. The key's length
// is the tile's zoom; any rune outside '0'..'3' is rejected.
func FromQuadkey(qk string) (Tile, error) {
	t := Tile{Z: len(qk)}
	for i := 0; i < len(qk); i++ {
		mask := 1 << uint(t.Z-i-1)
		switch qk[i] {
		case '0':
		case '1':
			t.X |= mask
		case '2':
			t.Y |= mask
		case '3':
			t.X |= mask
			t.Y |= mask
		default:
			return Tile{}, fmt.Errorf("quadkey %q: invalid digit %q at index %d", qk, qk[i], i)
		}
	}
	return t, nil
}

// Parent returns the tile one zoom level coarser. If decrementing the zoom
// would fall below zmin the null tile is returned instead; pass a negative
// zmin to disable the floor (allows navigating past zoom 0).
func (t Tile) Parent(zmin int) Tile {
	if zmin >= 0 && t.Z-1 < zmin {
		return Tile{}
	}
	return Tile{X: t.X >> 1, Y: t.Y >> 1, Z: t.Z - 1}
}

// Children returns the four tiles covering t at the next deeper zoom, or
// nil if that zoom would exceed zmax. Pass zmax <= 0 to disable the cap.
func (t Tile) Children(zmax int) []Tile {
	z := t.Z + 1
	if zmax > 0 && z > zmax {
		return nil
	}
	x, y := t.X*2, t.Y*2
	return []Tile{
		{x, y, z},
		{x + 1, y, z},
		{x + 1, y + 1, z},
		{x, y + 1, z},
	}
}

// Siblings returns the other three tiles sharing t's parent. The parent
// floor is disabled here so tiles remain navigable at negative zooms.
func (t Tile) Siblings() []Tile {
	sibs := make([]Tile, 0, 3)
	for _, c := range t.Parent(-1).Children(0) {
		if c != t {
			sibs = append(sibs, c)
		}
	}
	return sibs
}

// HasSiblings reports whether all three of t's siblings appear among the
// candidates. Vacuously true for an empty candidate set.
func (t Tile) HasSiblings(candidates ...Tile) bool {
	if len(candidates) == 0 {
		return true
	}
	have := make(map[Tile]struct{}, len(candidates))
	for _, c := range candidates {
		have[c] = struct{}{}
	}
	for _, s := range t.Siblings() {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
