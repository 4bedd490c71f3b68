package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// LoadBoundary reads a catchment boundary polygon from the first feature of
// the file at path. The format is chosen by extension: .shp (ESRI
// Shapefile), .geojson/.json (GeoJSON feature collection, feature, or bare
// geometry), .wkt (well-known text). A MultiPolygon feature contributes its
// first polygon.
func LoadBoundary(path string) (orb.Polygon, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return loadShapefile(path)
	case ".geojson", ".json":
		return loadGeoJSON(path)
	case ".wkt":
		return loadWKT(path)
	default:
		return nil, fmt.Errorf("load boundary %s: unsupported format", path)
	}
}

func loadShapefile(path string) (orb.Polygon, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load boundary %s: %w", path, err)
	}
	defer reader.Close()

	if !reader.Next() {
		return nil, fmt.Errorf("load boundary %s: shapefile has no shapes", path)
	}
	_, shape := reader.Shape()
	poly, ok := shape.(*shp.Polygon)
	if !ok {
		return nil, fmt.Errorf("load boundary %s: first shape is %T, want polygon", path, shape)
	}
	return shpToOrb(poly), nil
}

// shpToOrb splits a shapefile polygon's flat point list into rings at the
// part offsets and converts each to an orb ring.
func shpToOrb(poly *shp.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(poly.Parts))
	for i, start := range poly.Parts {
		end := int32(len(poly.Points))
		if i+1 < len(poly.Parts) {
			end = poly.Parts[i+1]
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range poly.Points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		out = append(out, ring)
	}
	return out
}

func loadGeoJSON(path string) (orb.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load boundary %s: %w", path, err)
	}

	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		return polygonFromGeometry(path, fc.Features[0].Geometry)
	}
	if feat, err := geojson.UnmarshalFeature(data); err == nil {
		return polygonFromGeometry(path, feat.Geometry)
	}
	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("load boundary %s: %w", path, err)
	}
	return polygonFromGeometry(path, geom.Geometry())
}

func loadWKT(path string) (orb.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load boundary %s: %w", path, err)
	}
	geom, err := wkt.Unmarshal(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("load boundary %s: %w", path, err)
	}
	return polygonFromGeometry(path, geom)
}

func polygonFromGeometry(path string, geom orb.Geometry) (orb.Polygon, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		return g, nil
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("load boundary %s: empty multipolygon", path)
		}
		return g[0], nil
	default:
		return nil, fmt.Errorf("load boundary %s: geometry is %s, want polygon", path, geom.GeoJSONType())
	}
}
