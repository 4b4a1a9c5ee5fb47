package shapefile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// Test datasets are synthesized in memory and written to temp directories,
// so every test controls the exact bytes on disk.

const (
	codeNull     = 0
	codePoint    = 1
	codePolyLine = 3
)

type testRecord struct {
	null   bool
	shape  int32
	box    [4]float64 // MinX, MinY, MaxX, MaxY
	parts  []int32
	coords [][2]float64
}

func pointRec(x, y float64) testRecord {
	return testRecord{shape: codePoint, coords: [][2]float64{{x, y}}}
}

func nullRec() testRecord {
	return testRecord{null: true}
}

func polyLineRec(box [4]float64, parts []int32, coords [][2]float64) testRecord {
	return testRecord{shape: codePolyLine, box: box, parts: parts, coords: coords}
}

func (r testRecord) payload() []byte {
	var buf bytes.Buffer
	put32 := func(v int32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	}
	putF := func(vals ...float64) {
		var b [8]byte
		for _, v := range vals {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			buf.Write(b[:])
		}
	}

	if r.null {
		put32(codeNull)
		return buf.Bytes()
	}
	put32(r.shape)
	switch r.shape {
	case codePoint:
		putF(r.coords[0][0], r.coords[0][1])
	case codePolyLine:
		putF(r.box[0], r.box[1], r.box[2], r.box[3])
		put32(int32(len(r.parts)))
		put32(int32(len(r.coords)))
		for _, p := range r.parts {
			put32(p)
		}
		for _, c := range r.coords {
			putF(c[0], c[1])
		}
	}
	return buf.Bytes()
}

// buildShp assembles a main file and its matching index file.
func buildShp(shapeType int32, box [4]float64, records []testRecord) (shpData, shxData []byte) {
	var body bytes.Buffer
	type entry struct{ offset, length int64 }
	var entries []entry

	for i, rec := range records {
		payload := rec.payload()
		entries = append(entries, entry{
			offset: 100 + int64(body.Len()),
			length: int64(len(payload)),
		})
		var hdr [8]byte
		binary.BigEndian.PutUint32(hdr[0:4], uint32(i+1))
		binary.BigEndian.PutUint32(hdr[4:8], uint32(len(payload)/2))
		body.Write(hdr[:])
		body.Write(payload)
	}

	header := func(totalLen int) []byte {
		hdr := make([]byte, 100)
		binary.BigEndian.PutUint32(hdr[0:4], 9994)
		binary.BigEndian.PutUint32(hdr[24:28], uint32(totalLen/2))
		binary.LittleEndian.PutUint32(hdr[28:32], 1000)
		binary.LittleEndian.PutUint32(hdr[32:36], uint32(shapeType))
		for i, v := range box {
			binary.LittleEndian.PutUint64(hdr[36+8*i:], math.Float64bits(v))
		}
		return hdr
	}

	shpData = append(header(100+body.Len()), body.Bytes()...)

	var idx bytes.Buffer
	idx.Write(header(100 + 8*len(entries)))
	for _, e := range entries {
		var b [8]byte
		binary.BigEndian.PutUint32(b[0:4], uint32(e.offset/2))
		binary.BigEndian.PutUint32(b[4:8], uint32(e.length/2))
		idx.Write(b[:])
	}
	shxData = idx.Bytes()
	return shpData, shxData
}

// buildDbf assembles an attribute table with NAME and POP columns.
func buildDbf(rows []struct {
	Name string
	Pop  int64
}) []byte {
	const nameLen, popLen = 10, 8
	headerLen := 32 + 2*32 + 1
	recordLen := 1 + nameLen + popLen

	var buf bytes.Buffer
	hdr := make([]byte, 32)
	hdr[0] = 0x03
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(recordLen))
	buf.Write(hdr)

	writeField := func(name string, typ byte, length byte) {
		desc := make([]byte, 32)
		copy(desc[0:11], name)
		desc[11] = typ
		desc[16] = length
		buf.Write(desc)
	}
	writeField("NAME", 'C', nameLen)
	writeField("POP", 'N', popLen)
	buf.WriteByte(0x0D)

	for _, row := range rows {
		buf.WriteByte(0x20)
		cell := make([]byte, nameLen)
		for i := range cell {
			cell[i] = ' '
		}
		copy(cell, row.Name)
		buf.Write(cell)

		num := []byte{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}
		s := strconv.FormatInt(row.Pop, 10)
		copy(num[popLen-len(s):], s)
		buf.Write(num)
	}
	return buf.Bytes()
}

type dbfRowSpec = struct {
	Name string
	Pop  int64
}

// writeDataset writes a dataset named base into a temp dir and returns the
// .shp path. Nil members are omitted.
func writeDataset(t *testing.T, shpData, shxData, dbfData []byte) string {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "test")

	write := func(ext string, data []byte) {
		if data == nil {
			return
		}
		if err := os.WriteFile(base+ext, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", ext, err)
		}
	}
	write(".shp", shpData)
	write(".shx", shxData)
	write(".dbf", dbfData)
	return base + ".shp"
}

// pointDataset builds the standard three-record fixture: point, null shape,
// point, with attributes for every ordinal.
func pointDataset(t *testing.T, withShx, withDbf bool) string {
	t.Helper()
	shpData, shxData := buildShp(codePoint, [4]float64{1, 1, 5, 5}, []testRecord{
		pointRec(1, 1),
		nullRec(),
		pointRec(5, 5),
	})
	if !withShx {
		shxData = nil
	}
	var dbfData []byte
	if withDbf {
		dbfData = buildDbf([]dbfRowSpec{
			{Name: "first", Pop: 100},
			{Name: "second", Pop: 200},
			{Name: "third", Pop: 300},
		})
	}
	return writeDataset(t, shpData, shxData, dbfData)
}
