package shp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

type dbfRow struct {
	deleted bool
	values  []string // raw field text, padded to field length here
}

// dbfBytes assembles a dBASE III file with the given columns and rows.
func dbfBytes(fields []DBFField, rows []dbfRow) []byte {
	headerLen := 32 + 32*len(fields) + 1
	recordLen := 1
	for _, f := range fields {
		recordLen += f.Length
	}

	var buf bytes.Buffer
	hdr := make([]byte, 32)
	hdr[0] = 0x03
	hdr[1], hdr[2], hdr[3] = 24, 1, 15
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(recordLen))
	buf.Write(hdr)

	for _, f := range fields {
		desc := make([]byte, 32)
		copy(desc[0:11], f.Name)
		desc[11] = f.Type
		desc[16] = byte(f.Length)
		desc[17] = byte(f.DecimalCount)
		buf.Write(desc)
	}
	buf.WriteByte(0x0D)

	for _, row := range rows {
		if row.deleted {
			buf.WriteByte(0x2A)
		} else {
			buf.WriteByte(0x20)
		}
		for i, f := range fields {
			cell := make([]byte, f.Length)
			for j := range cell {
				cell[j] = ' '
			}
			copy(cell, row.values[i])
			buf.Write(cell)
		}
	}
	return buf.Bytes()
}

func testFields() []DBFField {
	return []DBFField{
		{Name: "NAME", Type: 'C', Length: 10},
		{Name: "POP", Type: 'N', Length: 8},
		{Name: "AREA", Type: 'N', Length: 8, DecimalCount: 2},
		{Name: "CAPITAL", Type: 'L', Length: 1},
	}
}

func TestOpenDBF(t *testing.T) {
	raw := dbfBytes(testFields(), []dbfRow{
		{values: []string{"Springfield", "30720", "12.50", "T"}},
		{values: []string{"Shelbyville", "", "", "?"}},
	})

	d, err := OpenDBF(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenDBF: %v", err)
	}
	if d.RecordCount() != 2 {
		t.Errorf("Expected 2 records, got %d", d.RecordCount())
	}
	fields := d.Fields()
	if len(fields) != 4 {
		t.Fatalf("Expected 4 fields, got %d", len(fields))
	}
	if fields[0].Name != "NAME" || fields[0].Type != 'C' {
		t.Errorf("Expected NAME/C, got %s/%c", fields[0].Name, fields[0].Type)
	}
}

func TestDBFRecordDecoding(t *testing.T) {
	raw := dbfBytes(testFields(), []dbfRow{
		{values: []string{"Springfiel", "30720", "12.50", "T"}},
		{values: []string{"Shelbyvill", "", "", "?"}},
	})
	d, err := OpenDBF(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenDBF: %v", err)
	}

	row, err := d.Record(0)
	if err != nil {
		t.Fatalf("Record(0): %v", err)
	}
	if row["NAME"] != "Springfiel" {
		t.Errorf("Expected NAME Springfiel, got %v", row["NAME"])
	}
	if row["POP"] != int64(30720) {
		t.Errorf("Expected POP int64 30720, got %v (%T)", row["POP"], row["POP"])
	}
	if row["AREA"] != 12.50 {
		t.Errorf("Expected AREA 12.50, got %v", row["AREA"])
	}
	if row["CAPITAL"] != true {
		t.Errorf("Expected CAPITAL true, got %v", row["CAPITAL"])
	}

	// Blank numerics and unknown logicals decode to nil.
	row, err = d.Record(1)
	if err != nil {
		t.Fatalf("Record(1): %v", err)
	}
	if row["POP"] != nil || row["AREA"] != nil || row["CAPITAL"] != nil {
		t.Errorf("Expected nil blanks, got POP=%v AREA=%v CAPITAL=%v",
			row["POP"], row["AREA"], row["CAPITAL"])
	}
}

func TestDBFDeletedRecord(t *testing.T) {
	raw := dbfBytes(testFields(), []dbfRow{
		{values: []string{"Alive", "1", "1.00", "T"}},
		{deleted: true, values: []string{"Gone", "2", "2.00", "F"}},
		{values: []string{"AlsoAlive", "3", "3.00", "F"}},
	})
	d, err := OpenDBF(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenDBF: %v", err)
	}

	// Deleted rows come back nil so ordinals stay aligned with geometry.
	row, err := d.Record(1)
	if err != nil {
		t.Fatalf("Record(1): %v", err)
	}
	if row != nil {
		t.Errorf("Expected nil row for deleted record, got %v", row)
	}

	row, err = d.Record(2)
	if err != nil {
		t.Fatalf("Record(2): %v", err)
	}
	if row["NAME"] != "AlsoAlive" {
		t.Errorf("Expected NAME AlsoAlive, got %v", row["NAME"])
	}
}

func TestOpenDBFRecordLengthTooShort(t *testing.T) {
	fields := testFields()
	raw := dbfBytes(fields, []dbfRow{
		{values: []string{"Only", "1", "1.00", "T"}},
	})

	// A record length that cannot hold the deletion flag plus every field
	// must be rejected at open time, not panic on the first row read.
	for _, length := range []uint16{0, 1, 10} {
		binary.LittleEndian.PutUint16(raw[10:12], length)
		_, err := OpenDBF(bytes.NewReader(raw))
		var he *HeaderError
		if !errors.As(err, &he) {
			t.Errorf("record length %d: Expected HeaderError, got %v", length, err)
		}
	}
}

func TestDBFRecordOutOfRange(t *testing.T) {
	raw := dbfBytes(testFields(), []dbfRow{
		{values: []string{"Only", "1", "1.00", "T"}},
	})
	d, err := OpenDBF(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenDBF: %v", err)
	}
	if _, err := d.Record(1); err == nil {
		t.Error("Expected error for out of range record, got nil")
	}
	if _, err := d.Record(-1); err == nil {
		t.Error("Expected error for negative record, got nil")
	}
}
