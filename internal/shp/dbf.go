package shp

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The attribute file is dBASE III/IV format:
// http://www.clicketyclick.dk/databases/xbase/format/dbf.html

// DBFHeader is the fixed 32-byte attribute file header.
type DBFHeader struct {
	Version      byte
	LastUpdate   [3]byte // YY MM DD, years since 1900
	NumRecords   uint32  // little-endian
	HeaderLength uint16
	RecordLength uint16
	_            [2]byte
	IncompleteTx byte
	EncryptFlag  byte
	_            [12]byte
	MDXFlag      byte
	LanguageID   byte
	_            [2]byte
}

// dbfFieldDescriptor is the 32-byte on-disk field descriptor.
type dbfFieldDescriptor struct {
	Name         [11]byte
	Type         byte
	_            [4]byte
	Length       uint8
	DecimalCount uint8
	_            [13]byte
	IndexFlag    byte
}

// DBFField describes one column of the attribute table.
type DBFField struct {
	Name         string
	Type         byte // C, N, F, L, D
	Length       int
	DecimalCount int
}

// DBF reads attribute rows from a dBASE file with random access by record
// ordinal. Rows are addressed by the same zero-based ordinal as the geometry
// records they accompany.
//
// A DBF is not safe for concurrent use; callers that share one must serialize
// Record calls.
type DBF struct {
	r      io.ReadSeeker
	header DBFHeader
	fields []DBFField
}

// OpenDBF parses the attribute file header and field descriptors and leaves
// the stream ready for row reads.
func OpenDBF(r io.ReadSeeker) (*DBF, error) {
	d := &DBF{r: r}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek attribute header: %w", err)
	}
	if err := binary.Read(r, le, &d.header); err != nil {
		return nil, fmt.Errorf("read attribute header: %w", err)
	}

	// Field descriptors fill the header area after the fixed 32 bytes, 32
	// bytes each, terminated by 0x0D.
	if d.header.HeaderLength < 33 {
		return nil, &HeaderError{Reason: fmt.Sprintf("attribute header length %d is too short", d.header.HeaderLength)}
	}
	numFields := (int(d.header.HeaderLength) - 33) / 32
	for i := 0; i < numFields; i++ {
		var raw dbfFieldDescriptor
		if err := binary.Read(r, le, &raw); err != nil {
			return nil, fmt.Errorf("read field descriptor %d: %w", i, err)
		}
		d.fields = append(d.fields, DBFField{
			Name:         fieldName(raw.Name),
			Type:         raw.Type,
			Length:       int(raw.Length),
			DecimalCount: int(raw.DecimalCount),
		})
	}

	// Every row starts with the deletion flag, so the declared record length
	// must cover it plus every field.
	minRecord := 1
	for _, f := range d.fields {
		minRecord += f.Length
	}
	if int(d.header.RecordLength) < minRecord {
		return nil, &HeaderError{Reason: fmt.Sprintf(
			"attribute record length %d is shorter than the %d bytes its fields require",
			d.header.RecordLength, minRecord)}
	}
	return d, nil
}

// RecordCount returns the number of rows in the table.
func (d *DBF) RecordCount() int {
	return int(d.header.NumRecords)
}

// Fields returns the column descriptors in file order.
func (d *DBF) Fields() []DBFField {
	return d.fields
}

// Record reads the row at the given zero-based ordinal and decodes each field
// to its Go value: strings for C and D, int64 or float64 for N, float64 for
// F, bool for L. Blank numerics decode to nil. Deleted rows return a nil map
// with no error, so ordinals stay aligned with the geometry file.
func (d *DBF) Record(i int) (map[string]interface{}, error) {
	if i < 0 || i >= int(d.header.NumRecords) {
		return nil, fmt.Errorf("attribute record %d out of range [0, %d)", i, d.header.NumRecords)
	}

	offset := int64(d.header.HeaderLength) + int64(i)*int64(d.header.RecordLength)
	if _, err := d.r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek attribute record %d: %w", i, err)
	}
	raw := make([]byte, d.header.RecordLength)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		return nil, fmt.Errorf("read attribute record %d: %w", i, err)
	}

	if raw[0] == 0x2A { // deletion flag
		return nil, nil
	}

	row := make(map[string]interface{}, len(d.fields))
	pos := 1
	for _, f := range d.fields {
		if pos+f.Length > len(raw) {
			return nil, &RecordError{
				RecordNumber: int32(i + 1),
				Reason:       fmt.Sprintf("attribute row shorter than field %q requires", f.Name),
			}
		}
		val, err := decodeField(f, raw[pos:pos+f.Length])
		if err != nil {
			return nil, fmt.Errorf("attribute record %d field %q: %w", i, f.Name, err)
		}
		row[f.Name] = val
		pos += f.Length
	}
	return row, nil
}

func decodeField(f DBFField, raw []byte) (interface{}, error) {
	switch f.Type {
	case 'C':
		return strings.TrimSpace(string(raw)), nil
	case 'D':
		// YYYYMMDD, kept as a string.
		return strings.TrimSpace(string(raw)), nil
	case 'N':
		s := strings.TrimSpace(string(raw))
		if s == "" {
			return nil, nil
		}
		if f.DecimalCount == 0 {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
		fallthrough
	case 'F':
		s := strings.TrimSpace(string(raw))
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	case 'L':
		switch string(raw) {
		case "1", "T", "t", "Y", "y":
			return true, nil
		case "0", "F", "f", "N", "n":
			return false, nil
		case " ", "?":
			return nil, nil
		default:
			return nil, fmt.Errorf("unsupported logical value %q", raw)
		}
	default:
		return nil, fmt.Errorf("unsupported field type %c", f.Type)
	}
}

func fieldName(raw [11]byte) string {
	for i, b := range raw {
		if b == 0 {
			return strings.TrimSpace(string(raw[:i]))
		}
	}
	return strings.TrimSpace(string(raw[:]))
}
