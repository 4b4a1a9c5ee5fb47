package shapefile

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/shapefile/internal/shp"
)

// ErrClosed is returned by every operation on a closed Reader.
var ErrClosed = errors.New("shapefile: reader is closed")

// Format-contract errors surfaced from decoding, aliased so callers can
// match them with errors.As.
type (
	// HeaderError indicates a malformed main file header.
	HeaderError = shp.HeaderError

	// RecordError indicates record framing that disagrees with its
	// structure.
	RecordError = shp.RecordError

	// TruncatedRecordError indicates a record payload shorter than its
	// geometry requires.
	TruncatedRecordError = shp.TruncatedRecordError

	// UnsupportedShapeTypeError indicates a shape type code outside the
	// closed set, or one conflicting with the file's declared type.
	UnsupportedShapeTypeError = shp.UnsupportedShapeTypeError
)

// IndexOutOfRangeError indicates a record ordinal outside [0, Count).
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("shape index %d out of range [0, %d)", e.Index, e.Count)
}

// InvalidOffsetError indicates a byte offset outside the record area of the
// main file.
type InvalidOffsetError struct {
	Offset     int64
	FileLength int64
}

func (e *InvalidOffsetError) Error() string {
	return fmt.Sprintf("byte offset %d outside record area [%d, %d)", e.Offset, shp.HeaderLength, e.FileLength)
}
