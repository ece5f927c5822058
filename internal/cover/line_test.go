package cover

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

func TestLineCover_SampledPointsAreCovered(t *testing.T) {
	line := orb.LineString{{0.3, 0.2}, {2.7, 1.9}, {3.4, -0.8}}
	const z = 9

	set, _ := lineCover(line, z)
	if len(set) == 0 {
		t.Fatal("expected a non-empty cover")
	}

	// every point sampled along each segment must land in a covered tile
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		for s := 0; s <= 1000; s++ {
			f := float64(s) / 1000.0
			p := orb.Point{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f}
			if _, ok := set[tile.PointToTile(p, z)]; !ok {
				t.Fatalf("tile of sampled point %v not covered", p)
			}
		}
	}
}

func TestLineCover_EndpointsCovered(t *testing.T) {
	line := orb.LineString{{-77.03, 38.91}, {-77.05, 38.95}}
	set, _ := lineCover(line, 12)

	for _, p := range line {
		if _, ok := set[tile.PointToTile(p, 12)]; !ok {
			t.Fatalf("endpoint %v not covered", p)
		}
	}
}

func TestLineCover_DegenerateSegmentsSkipped(t *testing.T) {
	// both endpoints project to the same fractional coordinate: no tiles
	set, ring := lineCover(orb.LineString{{10, 10}, {10, 10}}, 6)
	if len(set) != 0 || len(ring) != 0 {
		t.Fatalf("degenerate segment produced set=%v ring=%v", set, ring)
	}

	// a single coordinate has no segments at all
	set, _ = lineCover(orb.LineString{{10, 10}}, 6)
	if len(set) != 0 {
		t.Fatalf("single coordinate produced %v", set)
	}

	// degenerate segments inside a longer line contribute nothing extra
	withDup := orb.LineString{{0.3, 0.2}, {0.3, 0.2}, {2.7, 1.9}}
	without := orb.LineString{{0.3, 0.2}, {2.7, 1.9}}
	setA, _ := lineCover(withDup, 9)
	setB, _ := lineCover(without, 9)
	if len(setA) != len(setB) {
		t.Fatalf("duplicate vertex changed the cover: %d vs %d tiles", len(setA), len(setB))
	}
	for tl := range setB {
		if _, ok := setA[tl]; !ok {
			t.Fatalf("tile %v missing after duplicate vertex", tl)
		}
	}
}

func TestLineCover_ThroughDispatcher(t *testing.T) {
	ls := orb.LineString{{5.1, 5.1}, {5.9, 5.7}}
	tiles, err := Tiles(ls, At(10))
	if err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("expected tiles for line")
	}

	mls := orb.MultiLineString{ls, {{6.2, 6.2}, {7.4, 6.9}}}
	more, err := Tiles(mls, At(10))
	if err != nil {
		t.Fatalf("Tiles multiline: %v", err)
	}
	if len(more) <= len(tiles) {
		t.Fatalf("multiline cover (%d) not larger than single line (%d)", len(more), len(tiles))
	}
}

func TestLineCover_RingClosureDropsSeam(t *testing.T) {
	// a closed square ring: the final y revisits the first ring entry's y,
	// so the trailing entry must be dropped to keep scanline pairing even
	sq := tile.Tile{X: 33, Y: 22, Z: 6}.Bound()
	_, ring := lineCover(sq.ToRing(), 6)

	if len(ring) == 0 {
		t.Fatal("expected ring entries for a closed square")
	}
	last, first := ring[len(ring)-1], ring[0]
	if last == first {
		t.Fatalf("seam entry not dropped: ring starts and ends at %v", first)
	}
}
