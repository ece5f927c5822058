// Command tilecover computes the tiles covering a GeoJSON geometry from
// the command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cover"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/tile"
)

var (
	inputFile string
	zoomSpec  string
	format    string
)

var rootCmd = &cobra.Command{
	Use:   "tilecover",
	Short: "Compute the slippy-map tiles covering a GeoJSON geometry",
	Long: `Reads a GeoJSON geometry, feature or feature collection and prints the
tiles covering it at a zoom level or across a zoom range.`,
	RunE: runCover,
}

func init() {
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "-", "GeoJSON file to read, or - for stdin")
	rootCmd.Flags().StringVarP(&zoomSpec, "zoom", "z", "", `zoom level ("12") or range ("5-12")`)
	rootCmd.Flags().StringVarP(&format, "format", "f", "tiles", "output format: tiles, quadkeys or geojson")
	_ = rootCmd.MarkFlagRequired("zoom")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCover(cmd *cobra.Command, args []string) error {
	zoom, err := parseZoom(zoomSpec)
	if err != nil {
		return err
	}

	data, err := readInput(inputFile)
	if err != nil {
		return err
	}
	geoms, err := parseGeometries(data)
	if err != nil {
		return err
	}

	seen := map[tile.Tile]struct{}{}
	var tiles []tile.Tile
	for _, g := range geoms {
		cov, err := cover.Tiles(g, zoom)
		if err != nil {
			return err
		}
		for _, t := range cov {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tiles = append(tiles, t)
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "tiles":
		enc := json.NewEncoder(out)
		for _, t := range tiles {
			if err := enc.Encode(t); err != nil {
				return err
			}
		}
	case "quadkeys":
		for _, t := range tiles {
			fmt.Fprintln(out, t.Quadkey())
		}
	case "geojson":
		fc := geojson.NewFeatureCollection()
		for _, t := range tiles {
			f := geojson.NewFeature(t.Polygon())
			f.Properties["x"] = t.X
			f.Properties["y"] = t.Y
			f.Properties["z"] = t.Z
			f.Properties["quadkey"] = t.Quadkey()
			fc.Append(f)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	default:
		return fmt.Errorf("unknown format %q: want tiles, quadkeys or geojson", format)
	}
	return nil
}

func parseZoom(s string) (cover.Zoom, error) {
	s = strings.TrimSpace(s)
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		zmin, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return cover.Zoom{}, fmt.Errorf("zoom min: %w", err)
		}
		zmax, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return cover.Zoom{}, fmt.Errorf("zoom max: %w", err)
		}
		if zmin > zmax {
			return cover.Zoom{}, fmt.Errorf("invalid zoom range: min %d greater than max %d", zmin, zmax)
		}
		return cover.Range(zmin, zmax), nil
	}
	z, err := strconv.Atoi(s)
	if err != nil {
		return cover.Zoom{}, fmt.Errorf("zoom: %w", err)
	}
	return cover.At(z), nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// parseGeometries accepts a bare geometry, a feature or a feature
// collection and returns the geometries to cover.
func parseGeometries(data []byte) ([]orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse feature collection: %w", err)
		}
		geoms := make([]orb.Geometry, 0, len(fc.Features))
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
		return geoms, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse feature: %w", err)
		}
		return []orb.Geometry{f.Geometry}, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parse geometry: %w", err)
		}
		return []orb.Geometry{g.Geometry()}, nil
	}
}
