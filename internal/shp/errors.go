package shp

import (
	"fmt"
)

// HeaderError indicates the 100-byte main file header violates the format.
type HeaderError struct {
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("malformed shapefile header: %s", e.Reason)
}

// UnsupportedShapeTypeError indicates a shape type code outside the closed
// set defined by the format, or a typed record that disagrees with the shape
// type declared in the file header.
type UnsupportedShapeTypeError struct {
	Code     int32
	Declared ShapeType // file-level shape type, if the code itself is valid
}

func (e *UnsupportedShapeTypeError) Error() string {
	if ShapeType(e.Code).Valid() {
		return fmt.Sprintf("unsupported shape type: record type %s conflicts with declared file type %s",
			ShapeType(e.Code), e.Declared)
	}
	return fmt.Sprintf("unsupported shape type: %d", e.Code)
}

// TruncatedRecordError indicates a record payload shorter than its geometry's
// structural fields require.
type TruncatedRecordError struct {
	RecordNumber int32
	ShapeType    ShapeType
	Reason       string
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated %s record %d: %s", e.ShapeType, e.RecordNumber, e.Reason)
}

// RecordError indicates a record whose framing or declared content length
// disagrees with its structure (runs past end of file, leaves unconsumed
// payload, carries an impossible count).
type RecordError struct {
	RecordNumber int32
	Reason       string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed record %d: %s", e.RecordNumber, e.Reason)
}
