package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cover"
)

func TestParseZoom(t *testing.T) {
	z, err := parseZoom("12")
	if err != nil {
		t.Fatalf("parseZoom: %v", err)
	}
	if z != cover.At(12) {
		t.Fatalf("parseZoom(12) = %v", z)
	}

	z, err = parseZoom("5-12")
	if err != nil {
		t.Fatalf("parseZoom: %v", err)
	}
	if z != cover.Range(5, 12) {
		t.Fatalf("parseZoom(5-12) = %v", z)
	}

	for _, bad := range []string{"", "x", "9-3", "1-2-3"} {
		if _, err := parseZoom(bad); err == nil {
			t.Fatalf("parseZoom(%q): want error", bad)
		}
	}
}

func TestParseGeometries(t *testing.T) {
	geom := `{"type":"Point","coordinates":[18.06,59.33]}`
	feature := `{"type":"Feature","properties":{},"geometry":` + geom + `}`
	fc := `{"type":"FeatureCollection","features":[` + feature + `,` + feature + `]}`

	for input, want := range map[string]int{geom: 1, feature: 1, fc: 2} {
		geoms, err := parseGeometries([]byte(input))
		if err != nil {
			t.Fatalf("parseGeometries: %v", err)
		}
		if len(geoms) != want {
			t.Fatalf("got %d geometries, want %d", len(geoms), want)
		}
	}

	if _, err := parseGeometries([]byte(`{"type":"Nope"}`)); err == nil {
		t.Fatal("want error for unknown type")
	}
}

func TestRunCover_Quadkeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "point.geojson")
	body := `{"type":"Point","coordinates":[79.08096313476562,21.135184856708992]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--input", path, "--zoom", "15", "--format", "quadkeys"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "123310002013332" {
		t.Fatalf("output = %q, want 123310002013332", got)
	}
}
