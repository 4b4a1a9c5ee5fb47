package shp

import (
	"fmt"
)

// ReadRecordMBR reads the framing and bounding box of the record starting at
// pos without decoding its coordinates, and returns the record's offset entry
// plus the position of the next record.
//
// Null shapes yield a nil box; point shapes yield a degenerate box built from
// the single coordinate; every other type stores its box in the first four
// payload doubles. A declared content length that would run past fileLength
// fails with RecordError before any payload is read.
func ReadRecordMBR(c *Cursor, pos, fileLength int64) (RecordOffset, int64, error) {
	if err := c.Seek(pos); err != nil {
		return RecordOffset{}, 0, err
	}

	recNum, err := c.BigInt32()
	if err != nil {
		return RecordOffset{}, 0, fmt.Errorf("record number at offset %d: %w", pos, err)
	}
	contentWords, err := c.BigInt32()
	if err != nil {
		return RecordOffset{}, 0, fmt.Errorf("record %d content length: %w", recNum, err)
	}
	if contentWords < wordsShapeCode {
		return RecordOffset{}, 0, &RecordError{
			RecordNumber: recNum,
			Reason:       fmt.Sprintf("content length %d words cannot hold a shape type code", contentWords),
		}
	}
	next := pos + 8 + 2*int64(contentWords)
	if next > fileLength {
		return RecordOffset{}, 0, &RecordError{
			RecordNumber: recNum,
			Reason:       fmt.Sprintf("declared content length %d words runs past end of file (%d > %d)", contentWords, next, fileLength),
		}
	}

	code, err := c.LittleInt32()
	if err != nil {
		return RecordOffset{}, 0, fmt.Errorf("record %d shape type: %w", recNum, err)
	}
	t := ShapeType(code)
	if !t.Valid() {
		return RecordOffset{}, 0, &UnsupportedShapeTypeError{Code: code}
	}

	ro := RecordOffset{Offset: pos}
	switch {
	case t == ShapeNull:
		// No spatial extent.
	case t.isPoint():
		if contentWords < wordsShapeCode+wordsPointXY {
			return RecordOffset{}, 0, &TruncatedRecordError{
				RecordNumber: recNum,
				ShapeType:    t,
				Reason:       fmt.Sprintf("content length %d words cannot hold a coordinate", contentWords),
			}
		}
		xy, err := c.LittleFloat64s(2)
		if err != nil {
			return RecordOffset{}, 0, err
		}
		ro.BBox = &Box{MinX: xy[0], MinY: xy[1], MaxX: xy[0], MaxY: xy[1]}
	default:
		if contentWords < wordsShapeCode+wordsBox {
			return RecordOffset{}, 0, &TruncatedRecordError{
				RecordNumber: recNum,
				ShapeType:    t,
				Reason:       fmt.Sprintf("content length %d words cannot hold a bounding box", contentWords),
			}
		}
		box, err := readBox(c)
		if err != nil {
			return RecordOffset{}, 0, err
		}
		ro.BBox = box
	}
	return ro, next, nil
}

// OffsetScanner streams (offset, MBR) entries from the main file in record
// order without materializing geometries. It follows the usual scanner shape:
//
//	for sc.Next() {
//		use sc.Record(), sc.Ordinal()
//	}
//	if err := sc.Err(); err != nil { ... }
type OffsetScanner struct {
	c      *Cursor
	length int64
	pos    int64
	ord    int
	cur    RecordOffset
	err    error
}

// NewOffsetScanner returns a scanner over the records of a main file whose
// header is hdr. The cursor is repositioned on every step, so it must not be
// shared while scanning.
func NewOffsetScanner(c *Cursor, hdr FileHeader) *OffsetScanner {
	return &OffsetScanner{c: c, length: hdr.FileLength, pos: HeaderLength, ord: -1}
}

// Next advances to the next record. It returns false at end of file or on the
// first error; Err distinguishes the two.
func (s *OffsetScanner) Next() bool {
	if s.err != nil || s.pos >= s.length {
		return false
	}
	ro, next, err := ReadRecordMBR(s.c, s.pos, s.length)
	if err != nil {
		s.err = err
		return false
	}
	s.cur = ro
	s.pos = next
	s.ord++
	return true
}

// Record returns the entry read by the last successful Next.
func (s *OffsetScanner) Record() RecordOffset {
	return s.cur
}

// Ordinal returns the zero-based position of the current record.
func (s *OffsetScanner) Ordinal() int {
	return s.ord
}

// Err returns the error that terminated the scan, or nil at clean end of
// file.
func (s *OffsetScanner) Err() error {
	return s.err
}

// ScanOffsets walks the whole main file in one pass and returns an entry per
// record, in file order.
func ScanOffsets(c *Cursor, hdr FileHeader) ([]RecordOffset, error) {
	var offsets []RecordOffset
	sc := NewOffsetScanner(c, hdr)
	for sc.Next() {
		offsets = append(offsets, sc.Record())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return offsets, nil
}
