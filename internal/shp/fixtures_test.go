package shp

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Test fixtures are assembled byte by byte so every test controls the exact
// framing and payload lengths it exercises.

func lePutF64(dst []byte, v float64) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
}

// payload accumulates a record payload (shape type code included).
type payload struct {
	buf bytes.Buffer
}

func (p *payload) i32(v int32) *payload {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	p.buf.Write(b[:])
	return p
}

func (p *payload) f64(vals ...float64) *payload {
	var b [8]byte
	for _, v := range vals {
		lePutF64(b[:], v)
		p.buf.Write(b[:])
	}
	return p
}

func (p *payload) bytes() []byte {
	return p.buf.Bytes()
}

func (p *payload) words() int32 {
	return int32(p.buf.Len() / 2)
}

func nullPayload() *payload {
	return new(payload).i32(int32(ShapeNull))
}

func pointPayload(x, y float64) *payload {
	return new(payload).i32(int32(ShapePoint)).f64(x, y)
}

func polyPayload(t ShapeType, box Box, parts []int32, pts []Point) *payload {
	p := new(payload).i32(int32(t)).f64(box.MinX, box.MinY, box.MaxX, box.MaxY)
	p.i32(int32(len(parts))).i32(int32(len(pts)))
	for _, part := range parts {
		p.i32(part)
	}
	for _, pt := range pts {
		p.f64(pt.X, pt.Y)
	}
	return p
}

func multiPointPayload(t ShapeType, box Box, pts []Point) *payload {
	p := new(payload).i32(int32(t)).f64(box.MinX, box.MinY, box.MaxX, box.MaxY)
	p.i32(int32(len(pts)))
	for _, pt := range pts {
		p.f64(pt.X, pt.Y)
	}
	return p
}

// valueBlock appends a Z or M block: min, max, then one double per point.
func (p *payload) valueBlock(vals []float64) *payload {
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	p.f64(min, max)
	p.f64(vals...)
	return p
}

// shpFile assembles a complete synthetic main file.
type shpFile struct {
	shapeType ShapeType
	box       Box
	records   bytes.Buffer
	recNum    int32
}

func newShpFile(t ShapeType, box Box) *shpFile {
	return &shpFile{shapeType: t, box: box}
}

// add appends one record with correct framing for the payload.
func (f *shpFile) add(p *payload) *shpFile {
	return f.addRaw(p.words(), p.bytes())
}

// addRaw appends one record with an explicit declared content length, which
// may disagree with the payload's real size.
func (f *shpFile) addRaw(contentWords int32, payload []byte) *shpFile {
	f.recNum++
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(f.recNum))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(contentWords))
	f.records.Write(hdr[:])
	f.records.Write(payload)
	return f
}

func (f *shpFile) bytes() []byte {
	total := HeaderLength + f.records.Len()
	hdr := make([]byte, HeaderLength)
	binary.BigEndian.PutUint32(hdr[0:4], fileCode)
	binary.BigEndian.PutUint32(hdr[24:28], uint32(total/2))
	binary.LittleEndian.PutUint32(hdr[28:32], 1000)
	binary.LittleEndian.PutUint32(hdr[32:36], uint32(f.shapeType))
	lePutF64(hdr[36:], f.box.MinX)
	lePutF64(hdr[44:], f.box.MinY)
	lePutF64(hdr[52:], f.box.MaxX)
	lePutF64(hdr[60:], f.box.MaxY)

	out := make([]byte, 0, total)
	out = append(out, hdr...)
	out = append(out, f.records.Bytes()...)
	return out
}

func (f *shpFile) cursor() *Cursor {
	return NewCursor(bytes.NewReader(f.bytes()))
}

// payloadCursor returns a cursor positioned at the start of a standalone
// payload, for driving DecodeShape directly.
func payloadCursor(p *payload) *Cursor {
	return NewCursor(bytes.NewReader(p.bytes()))
}
