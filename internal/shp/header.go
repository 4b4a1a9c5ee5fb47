package shp

import (
	"fmt"
)

// HeaderLength is the fixed size of the main file header in bytes. The same
// header layout opens the .shx index file.
const HeaderLength = 100

// fileCode is the magic number in the first word of every main file header.
const fileCode = 9994

// FileHeader is the parsed 100-byte main file header.
//
// The header stores the file length big-endian in 16-bit words; FileLength
// here is already converted to bytes. The bounding box covers every record in
// the file; Z and M ranges are meaningful only for types that carry them.
type FileHeader struct {
	FileLength int64 // total file length in bytes, header included
	ShapeType  ShapeType
	BBox       Box
	ZMin, ZMax float64
	MMin, MMax float64
}

// ParseHeader reads the main file header from the start of the stream.
//
// The layout is: file code and five unused words (big-endian), file length in
// 16-bit words (big-endian), version (little-endian, ignored), shape type
// code (little-endian), then eight little-endian doubles for the X/Y/Z/M
// extent.
func ParseHeader(c *Cursor) (FileHeader, error) {
	var hdr FileHeader

	if err := c.Seek(0); err != nil {
		return hdr, err
	}

	code, err := c.BigInt32()
	if err != nil {
		return hdr, fmt.Errorf("file code: %w", err)
	}
	if code != fileCode {
		return hdr, &HeaderError{Reason: fmt.Sprintf("bad file code %d, want %d", code, fileCode)}
	}

	// Five unused words precede the file length.
	if err := c.Skip(20); err != nil {
		return hdr, err
	}

	lengthWords, err := c.BigInt32()
	if err != nil {
		return hdr, fmt.Errorf("file length: %w", err)
	}
	hdr.FileLength = 2 * int64(lengthWords)
	if hdr.FileLength < HeaderLength {
		return hdr, &HeaderError{Reason: fmt.Sprintf("declared file length %d bytes is shorter than the header", hdr.FileLength)}
	}

	// Version field, fixed at 1000. Ignored.
	if _, err := c.LittleInt32(); err != nil {
		return hdr, fmt.Errorf("version: %w", err)
	}

	shapeCode, err := c.LittleInt32()
	if err != nil {
		return hdr, fmt.Errorf("shape type: %w", err)
	}
	hdr.ShapeType = ShapeType(shapeCode)
	if !hdr.ShapeType.Valid() {
		return hdr, &HeaderError{Reason: fmt.Sprintf("unknown shape type code %d", shapeCode)}
	}

	extent, err := c.LittleFloat64s(8)
	if err != nil {
		return hdr, fmt.Errorf("bounding box: %w", err)
	}
	hdr.BBox = Box{MinX: extent[0], MinY: extent[1], MaxX: extent[2], MaxY: extent[3]}
	hdr.ZMin, hdr.ZMax = extent[4], extent[5]
	hdr.MMin, hdr.MMax = extent[6], extent[7]

	return hdr, nil
}
