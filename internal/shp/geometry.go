package shp

// Box is an axis-aligned minimum bounding rectangle in the file's planar
// coordinate system.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether b and other overlap, edges included.
func (b Box) Intersects(other Box) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Range is a closed interval of Z or M values.
type Range struct {
	Min, Max float64
}

// Point is a single vertex.
type Point struct {
	X, Y float64
}

// Geometry is the decoded content of one shapefile record: raw coordinate and
// part data, assembled but not validated or projected.
//
// Parts holds the start index of each part as a half-open slice of Points:
// part i covers Points[Parts[i]:Parts[i+1]], with the last part running to
// the end of Points. Z and M are parallel to Points and nil when the record
// carries no Z or measure block. PartTypes is set only for multipatch
// records.
type Geometry struct {
	Type      ShapeType
	BBox      *Box // nil for the null shape
	Parts     []int32
	PartTypes []int32
	Points    []Point
	Z         []float64
	M         []float64
	ZRange    *Range
	MRange    *Range
}

// IsNull reports whether g is the absent-geometry marker decoded from a null
// shape record.
func (g *Geometry) IsNull() bool {
	return g.Type == ShapeNull
}

// PartCount returns the number of parts, counting point and multipoint
// geometries as a single implicit part.
func (g *Geometry) PartCount() int {
	if len(g.Parts) > 0 {
		return len(g.Parts)
	}
	if len(g.Points) > 0 {
		return 1
	}
	return 0
}

// Part returns the half-open vertex range [start, end) of part i.
func (g *Geometry) Part(i int) (start, end int) {
	if len(g.Parts) == 0 {
		return 0, len(g.Points)
	}
	start = int(g.Parts[i])
	if i == len(g.Parts)-1 {
		end = len(g.Points)
	} else {
		end = int(g.Parts[i+1])
	}
	return start, end
}

// RecordOffset locates one record in the main file and carries the MBR used
// for spatial filtering. BBox is nil for null shape records, which have no
// spatial extent.
type RecordOffset struct {
	Offset int64 // byte offset of the record header from file start
	BBox   *Box
}
