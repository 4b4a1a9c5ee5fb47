package shapefile

import (
	json "github.com/goccy/go-json"
)

// GeoJSONFeatureCollection mirrors the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// GeoJSONFeature is a single feature with geometry and properties.
type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   *GeoJSONGeometry       `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// GeoJSONGeometry holds a GeoJSON geometry. Coordinates nests per the
// geometry type: a position for Point, positions for MultiPoint, position
// arrays for MultiLineString, ring arrays for Polygon.
type GeoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// MarshalGeoJSON encodes the layer as a GeoJSON FeatureCollection. Null
// geometries encode as features with a null geometry member, per RFC 7946
// §3.2.
func (l *Layer) MarshalGeoJSON() ([]byte, error) {
	fc := GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, len(l.features)),
	}
	for _, feature := range l.features {
		fc.Features = append(fc.Features, geoJSONFeature(feature))
	}
	return json.Marshal(fc)
}

// MarshalGeoJSON encodes a single feature.
func (f Feature) MarshalGeoJSON() ([]byte, error) {
	return json.Marshal(geoJSONFeature(f))
}

func geoJSONFeature(f Feature) GeoJSONFeature {
	out := GeoJSONFeature{
		Type:       "Feature",
		Geometry:   geoJSONGeometry(f.Geometry),
		Properties: f.Attributes,
	}
	if out.Properties == nil {
		out.Properties = map[string]interface{}{}
	}
	return out
}

// geoJSONGeometry maps a shapefile geometry onto its closest GeoJSON
// counterpart: PolyLine to MultiLineString, Polygon parts to rings, and
// MultiPatch parts to MultiPolygon rings. Null geometries map to nil.
func geoJSONGeometry(g Geometry) *GeoJSONGeometry {
	switch g.Type {
	case GeometryTypePoint:
		if len(g.Coordinates) == 0 {
			return nil
		}
		return &GeoJSONGeometry{Type: "Point", Coordinates: g.Coordinates[0]}
	case GeometryTypeMultiPoint:
		return &GeoJSONGeometry{Type: "MultiPoint", Coordinates: g.Coordinates}
	case GeometryTypePolyLine:
		return &GeoJSONGeometry{Type: "MultiLineString", Coordinates: partSlices(g)}
	case GeometryTypePolygon:
		return &GeoJSONGeometry{Type: "Polygon", Coordinates: partSlices(g)}
	case GeometryTypeMultiPatch:
		parts := partSlices(g)
		polys := make([][][][]float64, 0, len(parts))
		for _, ring := range parts {
			polys = append(polys, [][][]float64{ring})
		}
		return &GeoJSONGeometry{Type: "MultiPolygon", Coordinates: polys}
	default:
		return nil
	}
}

func partSlices(g Geometry) [][][]float64 {
	n := g.PartCount()
	parts := make([][][]float64, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, g.Part(i))
	}
	return parts
}
