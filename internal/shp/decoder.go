package shp

import (
	"fmt"
)

// Payload sizes in 16-bit words. A double is 4 words, an int32 is 2.
const (
	wordsShapeCode = 2
	wordsInt32     = 2
	wordsDouble    = 4
	wordsPointXY   = 2 * wordsDouble
	wordsBox       = 4 * wordsDouble
	wordsRange     = 2 * wordsDouble
)

// ReadRecord reads one full record (framing plus payload) at the cursor
// position and decodes it against the file's declared shape type.
func ReadRecord(c *Cursor, fileType ShapeType) (int32, *Geometry, error) {
	recNum, err := c.BigInt32()
	if err != nil {
		return 0, nil, fmt.Errorf("record number: %w", err)
	}
	contentWords, err := c.BigInt32()
	if err != nil {
		return recNum, nil, fmt.Errorf("record %d content length: %w", recNum, err)
	}
	g, err := DecodeShape(c, fileType, contentWords, recNum)
	return recNum, g, err
}

// DecodeShape decodes a record payload. The cursor must be positioned at the
// payload's little-endian shape type code; contentWords is the record's
// declared content length in 16-bit words, which includes that code.
//
// Decoding consumes exactly the structurally implied number of words. A
// payload shorter than the geometry's structure requires fails with
// TruncatedRecordError; a declared length that disagrees with the structure
// in any other way fails with RecordError. The only tolerated variation is
// the measure block on Z and M types, which the format makes optional.
func DecodeShape(c *Cursor, fileType ShapeType, contentWords int32, recNum int32) (*Geometry, error) {
	if contentWords < wordsShapeCode {
		return nil, &TruncatedRecordError{
			RecordNumber: recNum,
			ShapeType:    fileType,
			Reason:       fmt.Sprintf("content length %d words cannot hold a shape type code", contentWords),
		}
	}

	code, err := c.LittleInt32()
	if err != nil {
		return nil, fmt.Errorf("record %d shape type: %w", recNum, err)
	}
	t := ShapeType(code)
	if !t.Valid() {
		return nil, &UnsupportedShapeTypeError{Code: code}
	}
	// Null shape records are legal inside any typed file; everything else
	// must match the header's declared type.
	if t != ShapeNull && t != fileType {
		return nil, &UnsupportedShapeTypeError{Code: code, Declared: fileType}
	}

	words := contentWords - wordsShapeCode

	switch t {
	case ShapeNull:
		if words != 0 {
			return nil, &RecordError{RecordNumber: recNum, Reason: fmt.Sprintf("null shape with %d words of payload", words)}
		}
		return &Geometry{Type: ShapeNull}, nil
	case ShapePoint, ShapePointZ, ShapePointM:
		return decodePoint(c, t, words, recNum)
	case ShapeMultiPoint, ShapeMultiPointZ, ShapeMultiPointM:
		return decodeMultiPoint(c, t, words, recNum)
	case ShapePolyLine, ShapePolygon, ShapePolyLineZ, ShapePolygonZ,
		ShapePolyLineM, ShapePolygonM:
		return decodePoly(c, t, words, recNum)
	case ShapeMultiPatch:
		return decodeMultiPatch(c, t, words, recNum)
	default:
		return nil, &UnsupportedShapeTypeError{Code: code}
	}
}

func truncated(recNum int32, t ShapeType, format string, args ...interface{}) error {
	return &TruncatedRecordError{RecordNumber: recNum, ShapeType: t, Reason: fmt.Sprintf(format, args...)}
}

func malformed(recNum int32, format string, args ...interface{}) error {
	return &RecordError{RecordNumber: recNum, Reason: fmt.Sprintf(format, args...)}
}

func decodePoint(c *Cursor, t ShapeType, words int32, recNum int32) (*Geometry, error) {
	need := int32(wordsPointXY)
	switch t {
	case ShapePointZ, ShapePointM:
		need += wordsDouble
	}
	if words < need {
		return nil, truncated(recNum, t, "%d words of payload, coordinates need %d", words, need)
	}

	xy, err := c.LittleFloat64s(2)
	if err != nil {
		return nil, err
	}
	g := &Geometry{
		Type:   t,
		BBox:   &Box{MinX: xy[0], MinY: xy[1], MaxX: xy[0], MaxY: xy[1]},
		Points: []Point{{X: xy[0], Y: xy[1]}},
	}

	switch t {
	case ShapePoint:
		if words != need {
			return nil, malformed(recNum, "point record with %d words of payload, want %d", words, need)
		}
	case ShapePointM:
		m, err := c.LittleFloat64()
		if err != nil {
			return nil, err
		}
		g.M = []float64{m}
		if words != need {
			return nil, malformed(recNum, "measured point record with %d words of payload, want %d", words, need)
		}
	case ShapePointZ:
		z, err := c.LittleFloat64()
		if err != nil {
			return nil, err
		}
		g.Z = []float64{z}
		switch words {
		case need:
			// Measure omitted.
		case need + wordsDouble:
			m, err := c.LittleFloat64()
			if err != nil {
				return nil, err
			}
			g.M = []float64{m}
		default:
			return nil, malformed(recNum, "point record with %d words of payload, want %d or %d", words, need, need+wordsDouble)
		}
	}
	return g, nil
}

func decodeMultiPoint(c *Cursor, t ShapeType, words int32, recNum int32) (*Geometry, error) {
	base := int32(wordsBox + wordsInt32)
	if words < base {
		return nil, truncated(recNum, t, "%d words of payload, box and point count need %d", words, base)
	}

	box, err := readBox(c)
	if err != nil {
		return nil, err
	}
	n, err := c.LittleInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, malformed(recNum, "negative point count %d", n)
	}

	need := base + n*wordsPointXY
	if words < need {
		return nil, truncated(recNum, t, "%d words of payload, %d points need %d", words, n, need)
	}
	points, err := readPoints(c, int(n))
	if err != nil {
		return nil, err
	}
	g := &Geometry{Type: t, BBox: box, Points: points}

	block := wordsRange + n*wordsDouble
	switch t {
	case ShapeMultiPoint:
		if words != need {
			return nil, malformed(recNum, "multipoint record with %d words of payload, want %d", words, need)
		}
	case ShapeMultiPointM:
		switch words {
		case need:
			// Measure omitted.
		case need + block:
			if g.MRange, g.M, err = readValueBlock(c, int(n)); err != nil {
				return nil, err
			}
		default:
			return nil, malformed(recNum, "multipoint record with %d words of payload, want %d or %d", words, need, need+block)
		}
	case ShapeMultiPointZ:
		needZ := need + block
		if words < needZ {
			return nil, truncated(recNum, t, "%d words of payload, Z block needs %d", words, needZ)
		}
		if g.ZRange, g.Z, err = readValueBlock(c, int(n)); err != nil {
			return nil, err
		}
		switch words {
		case needZ:
			// Measure omitted.
		case needZ + block:
			if g.MRange, g.M, err = readValueBlock(c, int(n)); err != nil {
				return nil, err
			}
		default:
			return nil, malformed(recNum, "multipoint record with %d words of payload, want %d or %d", words, needZ, needZ+block)
		}
	}
	return g, nil
}

func decodePoly(c *Cursor, t ShapeType, words int32, recNum int32) (*Geometry, error) {
	base := int32(wordsBox + 2*wordsInt32)
	if words < base {
		return nil, truncated(recNum, t, "%d words of payload, box and counts need %d", words, base)
	}

	box, err := readBox(c)
	if err != nil {
		return nil, err
	}
	numParts, err := c.LittleInt32()
	if err != nil {
		return nil, err
	}
	numPoints, err := c.LittleInt32()
	if err != nil {
		return nil, err
	}
	if numParts < 0 || numPoints < 0 {
		return nil, malformed(recNum, "negative counts: %d parts, %d points", numParts, numPoints)
	}

	if words < base+numParts*wordsInt32 {
		return nil, truncated(recNum, t, "%d words of payload, part index table needs %d", words, base+numParts*wordsInt32)
	}
	parts, err := c.LittleInt32s(int(numParts))
	if err != nil {
		return nil, err
	}
	if err := checkParts(parts, numPoints, recNum); err != nil {
		return nil, err
	}

	need := base + numParts*wordsInt32 + numPoints*wordsPointXY
	if words < need {
		return nil, truncated(recNum, t, "%d words of payload, coordinate array needs %d", words, need)
	}
	points, err := readPoints(c, int(numPoints))
	if err != nil {
		return nil, err
	}
	g := &Geometry{Type: t, BBox: box, Parts: parts, Points: points}

	block := wordsRange + numPoints*wordsDouble
	switch t {
	case ShapePolyLine, ShapePolygon:
		if words != need {
			return nil, malformed(recNum, "%s record with %d words of payload, want %d", t, words, need)
		}
	case ShapePolyLineM, ShapePolygonM:
		switch words {
		case need:
			// Measure omitted.
		case need + block:
			if g.MRange, g.M, err = readValueBlock(c, int(numPoints)); err != nil {
				return nil, err
			}
		default:
			return nil, malformed(recNum, "%s record with %d words of payload, want %d or %d", t, words, need, need+block)
		}
	case ShapePolyLineZ, ShapePolygonZ:
		needZ := need + block
		if words < needZ {
			return nil, truncated(recNum, t, "%d words of payload, Z block needs %d", words, needZ)
		}
		if g.ZRange, g.Z, err = readValueBlock(c, int(numPoints)); err != nil {
			return nil, err
		}
		switch words {
		case needZ:
			// Measure omitted.
		case needZ + block:
			if g.MRange, g.M, err = readValueBlock(c, int(numPoints)); err != nil {
				return nil, err
			}
		default:
			return nil, malformed(recNum, "%s record with %d words of payload, want %d or %d", t, words, needZ, needZ+block)
		}
	}
	return g, nil
}

func decodeMultiPatch(c *Cursor, t ShapeType, words int32, recNum int32) (*Geometry, error) {
	base := int32(wordsBox + 2*wordsInt32)
	if words < base {
		return nil, truncated(recNum, t, "%d words of payload, box and counts need %d", words, base)
	}

	box, err := readBox(c)
	if err != nil {
		return nil, err
	}
	numParts, err := c.LittleInt32()
	if err != nil {
		return nil, err
	}
	numPoints, err := c.LittleInt32()
	if err != nil {
		return nil, err
	}
	if numParts < 0 || numPoints < 0 {
		return nil, malformed(recNum, "negative counts: %d parts, %d points", numParts, numPoints)
	}

	tables := 2 * numParts * wordsInt32 // part index table + part type table
	if words < base+tables {
		return nil, truncated(recNum, t, "%d words of payload, part tables need %d", words, base+tables)
	}
	parts, err := c.LittleInt32s(int(numParts))
	if err != nil {
		return nil, err
	}
	if err := checkParts(parts, numPoints, recNum); err != nil {
		return nil, err
	}
	partTypes, err := c.LittleInt32s(int(numParts))
	if err != nil {
		return nil, err
	}

	block := wordsRange + numPoints*wordsDouble
	need := base + tables + numPoints*wordsPointXY + block // Z block is mandatory
	if words < need {
		return nil, truncated(recNum, t, "%d words of payload, coordinates and Z block need %d", words, need)
	}
	points, err := readPoints(c, int(numPoints))
	if err != nil {
		return nil, err
	}
	g := &Geometry{Type: t, BBox: box, Parts: parts, PartTypes: partTypes, Points: points}
	if g.ZRange, g.Z, err = readValueBlock(c, int(numPoints)); err != nil {
		return nil, err
	}

	switch words {
	case need:
		// Measure omitted.
	case need + block:
		if g.MRange, g.M, err = readValueBlock(c, int(numPoints)); err != nil {
			return nil, err
		}
	default:
		return nil, malformed(recNum, "multipatch record with %d words of payload, want %d or %d", words, need, need+block)
	}
	return g, nil
}

// checkParts validates a part index table against the coordinate count: each
// start index must lie inside the coordinate array and the table must be
// nondecreasing, or the half-open slicing rule would produce nonsense.
func checkParts(parts []int32, numPoints int32, recNum int32) error {
	prev := int32(0)
	for i, p := range parts {
		if p < 0 || p > numPoints {
			return malformed(recNum, "part %d starts at index %d, outside %d coordinates", i, p, numPoints)
		}
		if p < prev {
			return malformed(recNum, "part %d starts at index %d, before part %d at %d", i, p, i-1, prev)
		}
		prev = p
	}
	return nil
}

func readBox(c *Cursor) (*Box, error) {
	vals, err := c.LittleFloat64s(4)
	if err != nil {
		return nil, err
	}
	return &Box{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}, nil
}

func readPoints(c *Cursor, n int) ([]Point, error) {
	vals, err := c.LittleFloat64s(2 * n)
	if err != nil {
		return nil, err
	}
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{X: vals[2*i], Y: vals[2*i+1]}
	}
	return points, nil
}

// readValueBlock reads a min/max range followed by n doubles (the Z or M
// block layout).
func readValueBlock(c *Cursor, n int) (*Range, []float64, error) {
	bounds, err := c.LittleFloat64s(2)
	if err != nil {
		return nil, nil, err
	}
	vals, err := c.LittleFloat64s(n)
	if err != nil {
		return nil, nil, err
	}
	return &Range{Min: bounds[0], Max: bounds[1]}, vals, nil
}
