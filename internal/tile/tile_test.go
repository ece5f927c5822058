package tile

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestQuadkey_EncodeDecode(t *testing.T) {
	key := Tile{X: 11, Y: 3, Z: 8}.Quadkey()
	if key != "00001033" {
		t.Fatalf("Quadkey = %q, want 00001033", key)
	}

	back, err := FromQuadkey("00001033")
	if err != nil {
		t.Fatalf("FromQuadkey: %v", err)
	}
	if back != (Tile{X: 11, Y: 3, Z: 8}) {
		t.Fatalf("FromQuadkey = %v, want (11,3,8)", back)
	}

	if tl, err := FromQuadkey("03"); err != nil || tl != (Tile{X: 1, Y: 1, Z: 2}) {
		t.Fatalf("FromQuadkey(03) = %v, %v, want (1,1,2)", tl, err)
	}
}

func TestQuadkey_RoundTripAllTilesAtLowZooms(t *testing.T) {
	for z := 0; z <= 6; z++ {
		for x := 0; x < 1<<uint(z); x++ {
			for y := 0; y < 1<<uint(z); y++ {
				in := Tile{X: x, Y: y, Z: z}
				out, err := FromQuadkey(in.Quadkey())
				if err != nil {
					t.Fatalf("FromQuadkey(%v): %v", in, err)
				}
				if out != in {
					t.Fatalf("round trip %v -> %q -> %v", in, in.Quadkey(), out)
				}
			}
		}
	}
}

func TestFromQuadkey_RejectsBadDigits(t *testing.T) {
	for _, bad := range []string{"4", "0102x", "00-1"} {
		if _, err := FromQuadkey(bad); err == nil {
			t.Fatalf("FromQuadkey(%q): expected error", bad)
		}
	}
}

func TestParent(t *testing.T) {
	if p := (Tile{X: 5, Y: 10, Z: 10}).Parent(MinZoom); p != (Tile{X: 2, Y: 5, Z: 9}) {
		t.Fatalf("Parent = %v, want (2,5,9)", p)
	}

	// at the floor the null tile comes back
	if p := (Tile{X: 0, Y: 0, Z: 0}).Parent(MinZoom); p != (Tile{}) {
		t.Fatalf("Parent at floor = %v, want null tile", p)
	}

	// disabling the floor drives z negative
	if p := (Tile{X: 0, Y: 0, Z: 0}).Parent(-1); p.Z != -1 {
		t.Fatalf("unbounded Parent z = %d, want -1", p.Z)
	}
}

func TestChildren(t *testing.T) {
	kids := Tile{X: 2, Y: 5, Z: 9}.Children(MaxZoom)
	want := []Tile{{4, 10, 10}, {5, 10, 10}, {5, 11, 10}, {4, 11, 10}}
	if !reflect.DeepEqual(kids, want) {
		t.Fatalf("Children = %v, want %v", kids, want)
	}

	if kids := (Tile{Z: MaxZoom}).Children(MaxZoom); kids != nil {
		t.Fatalf("Children past zmax = %v, want nil", kids)
	}
	if kids := (Tile{Z: MaxZoom}).Children(0); len(kids) != 4 {
		t.Fatalf("Children with cap disabled = %v, want 4 tiles", kids)
	}
}

func TestParentChildInverse(t *testing.T) {
	for _, tl := range []Tile{{5, 10, 10}, {0, 0, 1}, {255, 13, 8}, {1, 1, 2}} {
		found := false
		for _, c := range tl.Parent(MinZoom).Children(0) {
			if c == tl {
				found = true
			}
		}
		if !found {
			t.Fatalf("%v not among its parent's children", tl)
		}
	}
}

func TestSiblings(t *testing.T) {
	sibs := Tile{X: 5, Y: 10, Z: 10}.Siblings()
	want := []Tile{{4, 10, 10}, {5, 11, 10}, {4, 11, 10}}
	if !reflect.DeepEqual(sibs, want) {
		t.Fatalf("Siblings = %v, want %v", sibs, want)
	}
}

func TestSiblings_Symmetry(t *testing.T) {
	quad := []Tile{{4, 10, 10}, {5, 10, 10}, {5, 11, 10}, {4, 11, 10}}
	for _, a := range quad {
		for _, b := range quad {
			if a == b {
				continue
			}
			if !contains(a.Siblings(), b) || !contains(b.Siblings(), a) {
				t.Fatalf("sibling symmetry broken between %v and %v", a, b)
			}
		}
	}
}

func TestHasSiblings(t *testing.T) {
	full := []Tile{{0, 0, 5}, {0, 1, 5}, {1, 1, 5}, {1, 0, 5}}
	partial := []Tile{{0, 0, 5}, {0, 1, 5}, {1, 1, 5}}

	if !(Tile{0, 0, 5}).HasSiblings(full...) {
		t.Fatal("expected (0,0,5) to have all siblings in the full quad")
	}
	if !(Tile{0, 1, 5}).HasSiblings(full...) {
		t.Fatal("expected (0,1,5) to have all siblings in the full quad")
	}
	if (Tile{0, 0, 5}).HasSiblings(partial...) {
		t.Fatal("expected false with an incomplete quad")
	}
	if (Tile{2, 0, 5}).HasSiblings(full...) {
		t.Fatal("expected false for a tile outside the quad")
	}
	if !(Tile{7, 7, 7}).HasSiblings() {
		t.Fatal("expected vacuous truth for no candidates")
	}
}

func TestValid(t *testing.T) {
	for _, tc := range []struct {
		tile Tile
		want bool
	}{
		{Tile{0, 0, 0}, true},
		{Tile{511, 511, 9}, true},
		{Tile{512, 0, 9}, false},
		{Tile{-1, 0, 3}, false},
		{Tile{0, 0, -1}, false},
	} {
		if got := tc.tile.Valid(); got != tc.want {
			t.Fatalf("Valid(%v) = %v, want %v", tc.tile, got, tc.want)
		}
	}
}

func TestJSON_Triple(t *testing.T) {
	data, err := json.Marshal(Tile{X: 23582, Y: 14415, Z: 15})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[23582,14415,15]" {
		t.Fatalf("marshal = %s, want [23582,14415,15]", data)
	}

	var back Tile
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != (Tile{X: 23582, Y: 14415, Z: 15}) {
		t.Fatalf("round trip = %v", back)
	}

	for _, bad := range []string{`[1,2]`, `[1,2,3,4]`, `{"x":1}`, `"1/2/3"`} {
		if err := json.Unmarshal([]byte(bad), &back); err == nil {
			t.Fatalf("unmarshal(%s): want error", bad)
		}
	}
}

func contains(tiles []Tile, t Tile) bool {
	for _, c := range tiles {
		if c == t {
			return true
		}
	}
	return false
}
