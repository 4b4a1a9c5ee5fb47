package shp

import (
	"fmt"
)

// ShxRecord is one entry of the .shx index file: the byte offset and content
// length of the corresponding main file record. Both are stored big-endian in
// 16-bit words on the wire and converted to bytes here.
type ShxRecord struct {
	Offset        int64
	ContentLength int64
}

// ReadShx parses a .shx index file. The index shares the main file's 100-byte
// header layout; its declared file length determines the record count, eight
// bytes per entry.
//
// Entries are validated against mainFileLength so a stale or lying index
// fails here instead of steering later reads into garbage.
func ReadShx(c *Cursor, mainFileLength int64) ([]ShxRecord, error) {
	hdr, err := ParseHeader(c)
	if err != nil {
		return nil, fmt.Errorf("index file: %w", err)
	}

	// The index header's declared length is untrusted input; cap the
	// preallocation by the most records the main file could physically hold
	// (12 bytes each: 8 framing + 4 shape type code).
	n := (hdr.FileLength - HeaderLength) / 8
	capHint := n
	if max := (mainFileLength - HeaderLength) / 12; capHint > max {
		capHint = max
	}
	records := make([]ShxRecord, 0, capHint)
	for i := int64(0); i < n; i++ {
		offsetWords, err := c.BigInt32()
		if err != nil {
			return nil, fmt.Errorf("index entry %d offset: %w", i, err)
		}
		lengthWords, err := c.BigInt32()
		if err != nil {
			return nil, fmt.Errorf("index entry %d length: %w", i, err)
		}
		rec := ShxRecord{
			Offset:        2 * int64(offsetWords),
			ContentLength: 2 * int64(lengthWords),
		}
		if rec.Offset < HeaderLength || rec.Offset+8+rec.ContentLength > mainFileLength {
			return nil, &RecordError{
				RecordNumber: int32(i + 1),
				Reason: fmt.Sprintf("index entry points at [%d, %d), outside the main file (%d bytes)",
					rec.Offset, rec.Offset+8+rec.ContentLength, mainFileLength),
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
