package shp

// ShapeType identifies the geometry kind of a shapefile record.
//
// A main file declares exactly one shape type in its header, and every record
// in the file must carry either that type or the null shape type. The numeric
// values are fixed by the ESRI Shapefile Technical Description.
type ShapeType int32

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyLine    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolyLineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolyLineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
	ShapeMultiPatch  ShapeType = 31
)

// Valid reports whether t is one of the shape types defined by the format.
func (t ShapeType) Valid() bool {
	switch t {
	case ShapeNull, ShapePoint, ShapePolyLine, ShapePolygon, ShapeMultiPoint,
		ShapePointZ, ShapePolyLineZ, ShapePolygonZ, ShapeMultiPointZ,
		ShapePointM, ShapePolyLineM, ShapePolygonM, ShapeMultiPointM,
		ShapeMultiPatch:
		return true
	default:
		return false
	}
}

// HasZ reports whether records of this type carry a Z coordinate array.
func (t ShapeType) HasZ() bool {
	switch t {
	case ShapePointZ, ShapePolyLineZ, ShapePolygonZ, ShapeMultiPointZ, ShapeMultiPatch:
		return true
	default:
		return false
	}
}

// HasM reports whether records of this type may carry a measure array.
//
// The measure block is optional on the wire for every type that defines one,
// so HasM indicates capability, not presence.
func (t ShapeType) HasM() bool {
	switch t {
	case ShapePointZ, ShapePolyLineZ, ShapePolygonZ, ShapeMultiPointZ,
		ShapePointM, ShapePolyLineM, ShapePolygonM, ShapeMultiPointM,
		ShapeMultiPatch:
		return true
	default:
		return false
	}
}

// isPoint reports whether t is a single-point type (one coordinate, no MBR on
// the wire).
func (t ShapeType) isPoint() bool {
	switch t {
	case ShapePoint, ShapePointZ, ShapePointM:
		return true
	default:
		return false
	}
}

// String returns the name used for the type in the format specification.
func (t ShapeType) String() string {
	switch t {
	case ShapeNull:
		return "NullShape"
	case ShapePoint:
		return "Point"
	case ShapePolyLine:
		return "PolyLine"
	case ShapePolygon:
		return "Polygon"
	case ShapeMultiPoint:
		return "MultiPoint"
	case ShapePointZ:
		return "PointZ"
	case ShapePolyLineZ:
		return "PolyLineZ"
	case ShapePolygonZ:
		return "PolygonZ"
	case ShapeMultiPointZ:
		return "MultiPointZ"
	case ShapePointM:
		return "PointM"
	case ShapePolyLineM:
		return "PolyLineM"
	case ShapePolygonM:
		return "PolygonM"
	case ShapeMultiPointM:
		return "MultiPointM"
	case ShapeMultiPatch:
		return "MultiPatch"
	default:
		return "Unknown"
	}
}
