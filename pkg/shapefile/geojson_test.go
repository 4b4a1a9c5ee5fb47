package shapefile

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestLayerMarshalGeoJSON(t *testing.T) {
	layer := &Layer{
		features: []Feature{
			{
				Ordinal: 0,
				Geometry: Geometry{
					Type:        GeometryTypePoint,
					Coordinates: [][]float64{{1, 2}},
				},
				Attributes: AttributeRow{"NAME": "spot"},
			},
			{
				Ordinal: 1,
				Geometry: Geometry{
					Type:        GeometryTypePolyLine,
					Coordinates: [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}},
					Parts:       []int{0, 3},
				},
			},
			{
				Ordinal:  2,
				Geometry: Geometry{Type: GeometryTypeNull},
			},
		},
	}

	raw, err := layer.MarshalGeoJSON()
	if err != nil {
		t.Fatalf("MarshalGeoJSON: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			Geometry *struct {
				Type        string      `json:"type"`
				Coordinates interface{} `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("Expected FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("Expected 3 features, got %d", len(fc.Features))
	}

	if fc.Features[0].Geometry == nil || fc.Features[0].Geometry.Type != "Point" {
		t.Errorf("Expected Point geometry, got %+v", fc.Features[0].Geometry)
	}
	if fc.Features[0].Properties["NAME"] != "spot" {
		t.Errorf("Expected NAME spot, got %v", fc.Features[0].Properties)
	}

	// PolyLine parts become MultiLineString segments.
	if fc.Features[1].Geometry == nil || fc.Features[1].Geometry.Type != "MultiLineString" {
		t.Fatalf("Expected MultiLineString geometry, got %+v", fc.Features[1].Geometry)
	}
	lines, ok := fc.Features[1].Geometry.Coordinates.([]interface{})
	if !ok || len(lines) != 2 {
		t.Errorf("Expected 2 line strings, got %v", fc.Features[1].Geometry.Coordinates)
	}

	// Null shapes carry a JSON null geometry.
	if fc.Features[2].Geometry != nil {
		t.Errorf("Expected null geometry, got %+v", fc.Features[2].Geometry)
	}
}

func TestFeatureMarshalGeoJSON(t *testing.T) {
	feat := Feature{
		Geometry: Geometry{
			Type:        GeometryTypePolygon,
			Coordinates: [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
			Parts:       []int{0},
		},
	}
	raw, err := feat.MarshalGeoJSON()
	if err != nil {
		t.Fatalf("MarshalGeoJSON: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	geom, ok := got["geometry"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected geometry object, got %v", got["geometry"])
	}
	if geom["type"] != "Polygon" {
		t.Errorf("Expected Polygon, got %v", geom["type"])
	}
	// Features without attributes still carry a properties object.
	if _, ok := got["properties"].(map[string]interface{}); !ok {
		t.Errorf("Expected properties object, got %v", got["properties"])
	}
}

func TestMarshalGeoJSONRoundTripFromFile(t *testing.T) {
	layer, err := LoadLayer(pointDataset(t, false, true), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("LoadLayer: %v", err)
	}
	raw, err := layer.MarshalGeoJSON()
	if err != nil {
		t.Fatalf("MarshalGeoJSON: %v", err)
	}
	var fc GeoJSONFeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(fc.Features) != 3 {
		t.Errorf("Expected 3 features, got %d", len(fc.Features))
	}
}
