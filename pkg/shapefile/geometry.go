package shapefile

import (
	"github.com/beetlebugorg/shapefile/internal/shp"
)

// ShapeType is the geometry kind declared by a shapefile or carried by a
// single record.
type ShapeType = shp.ShapeType

// Shape type codes fixed by the ESRI Shapefile Technical Description.
const (
	ShapeNull        = shp.ShapeNull
	ShapePoint       = shp.ShapePoint
	ShapePolyLine    = shp.ShapePolyLine
	ShapePolygon     = shp.ShapePolygon
	ShapeMultiPoint  = shp.ShapeMultiPoint
	ShapePointZ      = shp.ShapePointZ
	ShapePolyLineZ   = shp.ShapePolyLineZ
	ShapePolygonZ    = shp.ShapePolygonZ
	ShapeMultiPointZ = shp.ShapeMultiPointZ
	ShapePointM      = shp.ShapePointM
	ShapePolyLineM   = shp.ShapePolyLineM
	ShapePolygonM    = shp.ShapePolygonM
	ShapeMultiPointM = shp.ShapeMultiPointM
	ShapeMultiPatch  = shp.ShapeMultiPatch
)

// GeometryType classifies a decoded geometry independent of its Z/M variant.
type GeometryType int

const (
	// GeometryTypeNull is the absent-geometry marker decoded from a null
	// shape record.
	GeometryTypeNull GeometryType = iota

	// GeometryTypePoint is a single point location.
	GeometryTypePoint

	// GeometryTypeMultiPoint is an unordered set of points.
	GeometryTypeMultiPoint

	// GeometryTypePolyLine is one or more chains of connected line segments.
	GeometryTypePolyLine

	// GeometryTypePolygon is one or more closed rings.
	GeometryTypePolygon

	// GeometryTypeMultiPatch is a collection of surface patches.
	GeometryTypeMultiPatch
)

// String returns the string representation of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypeNull:
		return "Null"
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeMultiPoint:
		return "MultiPoint"
	case GeometryTypePolyLine:
		return "PolyLine"
	case GeometryTypePolygon:
		return "Polygon"
	case GeometryTypeMultiPatch:
		return "MultiPatch"
	default:
		return "Unknown"
	}
}

// Geometry is the decoded spatial content of one record.
//
// Coordinates holds one entry per vertex, [x, y] or [x, y, z] depending on
// the shape type. Measures, when present, is parallel to Coordinates. Parts
// holds the start index of each part: part i is the half-open slice
// Coordinates[Parts[i]:Parts[i+1]], with the last part running to the end.
// Parts is empty for point and multipoint geometries. PartTypes is set only
// for multipatch geometries.
type Geometry struct {
	Type        GeometryType
	ShapeType   ShapeType
	Coordinates [][]float64
	Parts       []int
	PartTypes   []int32
	Measures    []float64
}

// IsNull reports whether the geometry is the absent-geometry marker.
func (g Geometry) IsNull() bool {
	return g.Type == GeometryTypeNull
}

// PartCount returns the number of parts, counting point and multipoint
// geometries with vertices as a single implicit part.
func (g Geometry) PartCount() int {
	if len(g.Parts) > 0 {
		return len(g.Parts)
	}
	if len(g.Coordinates) > 0 {
		return 1
	}
	return 0
}

// Part returns the vertices of part i.
func (g Geometry) Part(i int) [][]float64 {
	if len(g.Parts) == 0 {
		return g.Coordinates
	}
	start := g.Parts[i]
	end := len(g.Coordinates)
	if i < len(g.Parts)-1 {
		end = g.Parts[i+1]
	}
	return g.Coordinates[start:end]
}

// Bounds returns the minimum bounding rectangle of the geometry's vertices.
// A null geometry returns the zero Bounds.
func (g Geometry) Bounds() Bounds {
	if len(g.Coordinates) == 0 {
		return Bounds{}
	}
	first := g.Coordinates[0]
	bounds := Bounds{MinX: first[0], MaxX: first[0], MinY: first[1], MaxY: first[1]}
	for _, coord := range g.Coordinates {
		x, y := coord[0], coord[1]
		if x < bounds.MinX {
			bounds.MinX = x
		}
		if x > bounds.MaxX {
			bounds.MaxX = x
		}
		if y < bounds.MinY {
			bounds.MinY = y
		}
		if y > bounds.MaxY {
			bounds.MaxY = y
		}
	}
	return bounds
}

// convertGeometry converts an internal decoded record to the public geometry
// model.
func convertGeometry(g *shp.Geometry) Geometry {
	out := Geometry{
		Type:      geometryType(g.Type),
		ShapeType: g.Type,
		Measures:  g.M,
		PartTypes: g.PartTypes,
	}
	if len(g.Parts) > 0 {
		out.Parts = make([]int, len(g.Parts))
		for i, p := range g.Parts {
			out.Parts[i] = int(p)
		}
	}
	if len(g.Points) > 0 {
		out.Coordinates = make([][]float64, len(g.Points))
		for i, p := range g.Points {
			if g.Z != nil {
				out.Coordinates[i] = []float64{p.X, p.Y, g.Z[i]}
			} else {
				out.Coordinates[i] = []float64{p.X, p.Y}
			}
		}
	}
	return out
}

func geometryType(t ShapeType) GeometryType {
	switch t {
	case shp.ShapePoint, shp.ShapePointZ, shp.ShapePointM:
		return GeometryTypePoint
	case shp.ShapeMultiPoint, shp.ShapeMultiPointZ, shp.ShapeMultiPointM:
		return GeometryTypeMultiPoint
	case shp.ShapePolyLine, shp.ShapePolyLineZ, shp.ShapePolyLineM:
		return GeometryTypePolyLine
	case shp.ShapePolygon, shp.ShapePolygonZ, shp.ShapePolygonM:
		return GeometryTypePolygon
	case shp.ShapeMultiPatch:
		return GeometryTypeMultiPatch
	default:
		return GeometryTypeNull
	}
}
