package shapefile

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/beetlebugorg/shapefile/internal/shp"
)

// HeaderLength is the fixed size of the main file header in bytes. Record
// byte offsets are always at or past it.
const HeaderLength = shp.HeaderLength

// FileHeader is the parsed main file header.
type FileHeader struct {
	FileLength int64 // total file length in bytes, header included
	ShapeType  ShapeType
	Bounds     Bounds
	ZMin, ZMax float64
	MMin, MMax float64
}

// Reader provides random-access reads over one shapefile's geometry records.
//
// The header is parsed once at construction. The per-record offset index is
// built lazily on first use and cached for the reader's lifetime; concurrent
// first accesses share a single build. A Reader is safe for concurrent use:
// indexed and offset reads serialize their seek+read pairs on the shared
// stream, while full scans open independent streams and may run alongside
// them.
type Reader struct {
	src    Source
	header FileHeader

	mu     sync.Mutex // guards f's position and closed
	f      io.ReadSeekCloser
	cur    *shp.Cursor
	closed bool

	indexMu sync.RWMutex
	index   []shp.RecordOffset // nil until built
}

// Open opens the shapefile at path. A .zip path opens the archived dataset;
// anything else is treated as a .shp path or dataset base path.
func Open(path string) (*Reader, error) {
	src, err := sourceForPath(path)
	if err != nil {
		return nil, err
	}
	return NewReader(src)
}

// NewReader opens the geometry stream from src and parses its header.
func NewReader(src Source) (*Reader, error) {
	f, err := src.Open(FileGeometry)
	if err != nil {
		return nil, err
	}
	cur := shp.NewCursor(f)
	hdr, err := shp.ParseHeader(cur)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{
		src: src,
		f:   f,
		cur: cur,
		header: FileHeader{
			FileLength: hdr.FileLength,
			ShapeType:  hdr.ShapeType,
			Bounds:     boxBounds(hdr.BBox),
			ZMin:       hdr.ZMin,
			ZMax:       hdr.ZMax,
			MMin:       hdr.MMin,
			MMax:       hdr.MMax,
		},
	}, nil
}

func sourceForPath(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return OpenZipSource(path)
	}
	return NewDirSource(path), nil
}

// Header returns the parsed main file header.
func (r *Reader) Header() FileHeader {
	return r.header
}

// Bounds returns the file-level bounding box from the header.
func (r *Reader) Bounds() Bounds {
	return r.header.Bounds
}

// RecordCount returns the number of records in the file. It builds the
// offset index if it has not been built yet.
func (r *Reader) RecordCount() (int, error) {
	idx, err := r.ensureIndex()
	if err != nil {
		return 0, err
	}
	return len(idx), nil
}

// OffsetAt returns the byte offset of the record at the given zero-based
// ordinal. Offsets returned here are valid arguments to ShapeAt.
func (r *Reader) OffsetAt(i int) (int64, error) {
	idx, err := r.ensureIndex()
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(idx) {
		return 0, &IndexOutOfRangeError{Index: i, Count: len(idx)}
	}
	return idx[i].Offset, nil
}

// Shape decodes the record at the given zero-based ordinal.
func (r *Reader) Shape(i int) (Geometry, error) {
	idx, err := r.ensureIndex()
	if err != nil {
		return Geometry{}, err
	}
	if i < 0 || i >= len(idx) {
		return Geometry{}, &IndexOutOfRangeError{Index: i, Count: len(idx)}
	}
	return r.decodeAt(idx[i].Offset)
}

// ShapeAt decodes the record starting at the given byte offset, bypassing
// the offset index. Offsets typically come from OffsetAt or from a previous
// BoundingBoxes scan.
func (r *Reader) ShapeAt(offset int64) (Geometry, error) {
	if offset < HeaderLength || offset >= r.header.FileLength {
		return Geometry{}, &InvalidOffsetError{Offset: offset, FileLength: r.header.FileLength}
	}
	return r.decodeAt(offset)
}

// decodeAt seeks the shared stream to a record and decodes it. The seek and
// the reads that follow must not interleave with another goroutine's, so the
// whole pair holds the reader lock.
func (r *Reader) decodeAt(offset int64) (Geometry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Geometry{}, ErrClosed
	}
	if err := r.cur.Seek(offset); err != nil {
		return Geometry{}, err
	}
	_, g, err := shp.ReadRecord(r.cur, r.header.ShapeType)
	if err != nil {
		return Geometry{}, err
	}
	return convertGeometry(g), nil
}

// AllShapes returns an iterator over every record in file order. Each call
// returns a fresh iterator, so iteration is restartable; decoding re-reads
// bytes on every step and shares no mutable state between iterators.
func (r *Reader) AllShapes() *ShapeIterator {
	return &ShapeIterator{r: r, ord: -1}
}

// ShapeIterator steps through records in file order.
type ShapeIterator struct {
	r    *Reader
	idx  []shp.RecordOffset
	ord  int
	geom Geometry
	err  error
}

// Next advances to the next record, decoding it. It returns false at the end
// of the file or on the first error; Err distinguishes the two.
func (it *ShapeIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.idx == nil {
		it.idx, it.err = it.r.ensureIndex()
		if it.err != nil {
			return false
		}
	}
	if it.ord+1 >= len(it.idx) {
		return false
	}
	it.ord++
	it.geom, it.err = it.r.decodeAt(it.idx[it.ord].Offset)
	return it.err == nil
}

// Geometry returns the record decoded by the last successful Next.
func (it *ShapeIterator) Geometry() Geometry {
	return it.geom
}

// Ordinal returns the zero-based position of the current record.
func (it *ShapeIterator) Ordinal() int {
	return it.ord
}

// Err returns the error that terminated iteration, or nil.
func (it *ShapeIterator) Err() error {
	return it.err
}

// MBRInfo pairs a record's location with the bounding rectangle used for
// spatial filtering. HasBounds is false for null shape records, which carry
// no spatial extent and never match a bounding-box query.
type MBRInfo struct {
	Ordinal   int
	Offset    int64
	Bounds    Bounds
	HasBounds bool
}

// BoundingBoxes streams per-record bounding boxes in file order without
// decoding geometries. The scan runs on its own stream handle, independent
// of the cached offset index, so it may run concurrently with indexed reads.
// The caller must Close the scanner.
func (r *Reader) BoundingBoxes() (*MBRScanner, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}
	f, err := r.src.Open(FileGeometry)
	if err != nil {
		return nil, err
	}
	hdr := shp.FileHeader{FileLength: r.header.FileLength, ShapeType: r.header.ShapeType}
	return &MBRScanner{
		f:  f,
		sc: shp.NewOffsetScanner(shp.NewCursor(f), hdr),
	}, nil
}

// MBRScanner streams MBRInfo entries from a dedicated stream handle.
type MBRScanner struct {
	f    io.ReadSeekCloser
	sc   *shp.OffsetScanner
	info MBRInfo
	err  error
}

// Next advances to the next record's bounding box.
func (s *MBRScanner) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.sc.Next() {
		s.err = s.sc.Err()
		return false
	}
	rec := s.sc.Record()
	s.info = MBRInfo{
		Ordinal: s.sc.Ordinal(),
		Offset:  rec.Offset,
	}
	if rec.BBox != nil {
		s.info.Bounds = boxBounds(*rec.BBox)
		s.info.HasBounds = true
	}
	return true
}

// Info returns the entry read by the last successful Next.
func (s *MBRScanner) Info() MBRInfo {
	return s.info
}

// Err returns the error that terminated the scan, or nil at clean end of
// file.
func (s *MBRScanner) Err() error {
	return s.err
}

// Close releases the scanner's stream handle.
func (s *MBRScanner) Close() error {
	return s.f.Close()
}

// Close releases the geometry stream. It is idempotent; operations after the
// first Close fail with ErrClosed. Geometries already decoded stay valid.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}

func (r *Reader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// ensureIndex returns the offset index, building it on first use. The
// double-checked locking keeps concurrent first callers down to a single
// build, and the slot is only written after a fully successful scan, so a
// failed build is retried from scratch on the next call.
func (r *Reader) ensureIndex() ([]shp.RecordOffset, error) {
	r.indexMu.RLock()
	idx := r.index
	r.indexMu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	if r.index != nil {
		return r.index, nil
	}
	if r.isClosed() {
		return nil, ErrClosed
	}
	idx, err := r.buildIndex()
	if err != nil {
		return nil, err
	}
	r.index = idx
	return idx, nil
}

// buildIndex constructs the offset index on an independent stream handle.
// When the source carries a .shx index file its offset table is used and
// only each record's MBR is read; otherwise one streaming pass walks every
// record.
func (r *Reader) buildIndex() ([]shp.RecordOffset, error) {
	hdr := shp.FileHeader{FileLength: r.header.FileLength, ShapeType: r.header.ShapeType}

	if xf, err := r.src.Open(FileIndex); err == nil {
		shx, err := shp.ReadShx(shp.NewCursor(xf), r.header.FileLength)
		xf.Close()
		if err != nil {
			return nil, err
		}
		return r.indexFromShx(shx)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	f, err := r.src.Open(FileGeometry)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return shp.ScanOffsets(shp.NewCursor(f), hdr)
}

func (r *Reader) indexFromShx(shx []shp.ShxRecord) ([]shp.RecordOffset, error) {
	f, err := r.src.Open(FileGeometry)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cur := shp.NewCursor(f)
	offsets := make([]shp.RecordOffset, 0, len(shx))
	for _, entry := range shx {
		ro, _, err := shp.ReadRecordMBR(cur, entry.Offset, r.header.FileLength)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, ro)
	}
	return offsets, nil
}
