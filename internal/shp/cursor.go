package shp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// The main file mixes byte orders: record framing and the file length are
// big-endian, everything inside a record payload is little-endian.
var (
	le = binary.LittleEndian
	be = binary.BigEndian
)

// Cursor wraps a seekable byte stream with the primitive reads the shapefile
// format needs. All reads advance the stream position; Seek repositions it
// absolutely, which the format requires for random record access.
//
// A Cursor is not safe for concurrent use; callers that share one must
// serialize each seek+read pair.
type Cursor struct {
	r   io.ReadSeeker
	buf [8]byte
}

// NewCursor returns a Cursor reading from r.
func NewCursor(r io.ReadSeeker) *Cursor {
	return &Cursor{r: r}
}

// Seek positions the cursor at an absolute byte offset from the file start.
func (c *Cursor) Seek(offset int64) error {
	if _, err := c.r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", offset, err)
	}
	return nil
}

func (c *Cursor) fill(n int) error {
	if _, err := io.ReadFull(c.r, c.buf[:n]); err != nil {
		return fmt.Errorf("read %d bytes: %w", n, err)
	}
	return nil
}

// BigInt32 reads a big-endian 32-bit integer.
func (c *Cursor) BigInt32() (int32, error) {
	if err := c.fill(4); err != nil {
		return 0, err
	}
	return int32(be.Uint32(c.buf[:4])), nil
}

// LittleInt32 reads a little-endian 32-bit integer.
func (c *Cursor) LittleInt32() (int32, error) {
	if err := c.fill(4); err != nil {
		return 0, err
	}
	return int32(le.Uint32(c.buf[:4])), nil
}

// LittleFloat64 reads a little-endian IEEE 754 double.
func (c *Cursor) LittleFloat64() (float64, error) {
	if err := c.fill(8); err != nil {
		return 0, err
	}
	return math.Float64frombits(le.Uint64(c.buf[:8])), nil
}

// LittleFloat64s reads n little-endian doubles.
func (c *Cursor) LittleFloat64s(n int) ([]float64, error) {
	raw := make([]byte, 8*n)
	if _, err := io.ReadFull(c.r, raw); err != nil {
		return nil, fmt.Errorf("read %d doubles: %w", n, err)
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.Float64frombits(le.Uint64(raw[8*i:]))
	}
	return vals, nil
}

// LittleInt32s reads n little-endian 32-bit integers.
func (c *Cursor) LittleInt32s(n int) ([]int32, error) {
	raw := make([]byte, 4*n)
	if _, err := io.ReadFull(c.r, raw); err != nil {
		return nil, fmt.Errorf("read %d int32s: %w", n, err)
	}
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(le.Uint32(raw[4*i:]))
	}
	return vals, nil
}

// Bytes reads exactly n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	raw := make([]byte, n)
	if _, err := io.ReadFull(c.r, raw); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, err)
	}
	return raw, nil
}

// Skip advances the cursor n bytes without interpreting them.
func (c *Cursor) Skip(n int64) error {
	if _, err := c.r.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("skip %d bytes: %w", n, err)
	}
	return nil
}
