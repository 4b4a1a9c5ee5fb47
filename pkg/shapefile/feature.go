package shapefile

import (
	"errors"
	"io"
	"io/fs"
	"sync"

	"github.com/beetlebugorg/shapefile/internal/shp"
)

// FieldDescriptor describes one attribute column.
type FieldDescriptor = shp.DBFField

// AttributeRow holds the attribute values of one record, keyed by field
// name. A nil row marks a record whose attribute entry is flagged deleted.
type AttributeRow map[string]interface{}

// Feature couples one geometry record with the attribute row at the same
// ordinal position. The geometry and attribute files use independent record
// framing; the ordinal is the only join key.
type Feature struct {
	Ordinal    int
	Geometry   Geometry
	Attributes AttributeRow
}

// FeatureReader joins geometry records with attribute rows by ordinal
// position and supports bounding-box-filtered reads over the joined records.
type FeatureReader struct {
	shp *Reader

	dbfMu sync.Mutex // guards the attribute stream's seek+read pairs
	dbfF  io.ReadSeekCloser
	dbf   *shp.DBF // nil when the dataset ships no attribute file
}

// OpenFeatures opens the dataset at path for joined geometry+attribute
// reads.
func OpenFeatures(path string) (*FeatureReader, error) {
	src, err := sourceForPath(path)
	if err != nil {
		return nil, err
	}
	return NewFeatureReader(src)
}

// NewFeatureReader opens the geometry and attribute streams from src. A
// dataset without an attribute file is readable; its features carry nil
// attribute rows.
func NewFeatureReader(src Source) (*FeatureReader, error) {
	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}
	fr := &FeatureReader{shp: r}

	f, err := src.Open(FileAttributes)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fr, nil
		}
		r.Close()
		return nil, err
	}
	dbf, err := shp.OpenDBF(f)
	if err != nil {
		f.Close()
		r.Close()
		return nil, err
	}
	fr.dbfF = f
	fr.dbf = dbf
	return fr, nil
}

// Reader returns the underlying geometry reader.
func (fr *FeatureReader) Reader() *Reader {
	return fr.shp
}

// Fields returns the attribute column descriptors, or nil when the dataset
// has no attribute file.
func (fr *FeatureReader) Fields() []FieldDescriptor {
	if fr.dbf == nil {
		return nil
	}
	return fr.dbf.Fields()
}

// Count returns the number of geometry records.
func (fr *FeatureReader) Count() (int, error) {
	return fr.shp.RecordCount()
}

// Feature reads the geometry and attribute row at the given ordinal.
func (fr *FeatureReader) Feature(i int) (Feature, error) {
	geom, err := fr.shp.Shape(i)
	if err != nil {
		return Feature{}, err
	}
	attrs, err := fr.row(i)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Ordinal: i, Geometry: geom, Attributes: attrs}, nil
}

func (fr *FeatureReader) row(i int) (AttributeRow, error) {
	if fr.dbf == nil {
		return nil, nil
	}
	fr.dbfMu.Lock()
	defer fr.dbfMu.Unlock()
	return fr.dbf.Record(i)
}

// FeaturesInBounds returns an iterator over the features whose bounding box
// intersects query, in file order. Null shape records have no extent and are
// never returned. The caller must Close the iterator.
func (fr *FeatureReader) FeaturesInBounds(query Bounds) (*FeatureIterator, error) {
	scan, err := fr.shp.BoundingBoxes()
	if err != nil {
		return nil, err
	}
	return &FeatureIterator{fr: fr, scan: scan, query: query}, nil
}

// FeatureIterator steps through bounding-box-filtered joined records.
type FeatureIterator struct {
	fr    *FeatureReader
	scan  *MBRScanner
	query Bounds
	feat  Feature
	err   error
}

// Next advances to the next feature intersecting the query box. Each
// surviving record costs one geometry decode and one attribute fetch, paired
// by ordinal.
func (it *FeatureIterator) Next() bool {
	if it.err != nil {
		return false
	}
	for it.scan.Next() {
		info := it.scan.Info()
		if !info.HasBounds || !info.Bounds.Intersects(it.query) {
			continue
		}
		geom, err := it.fr.shp.ShapeAt(info.Offset)
		if err != nil {
			it.err = err
			return false
		}
		attrs, err := it.fr.row(info.Ordinal)
		if err != nil {
			it.err = err
			return false
		}
		it.feat = Feature{Ordinal: info.Ordinal, Geometry: geom, Attributes: attrs}
		return true
	}
	it.err = it.scan.Err()
	return false
}

// Feature returns the feature read by the last successful Next.
func (it *FeatureIterator) Feature() Feature {
	return it.feat
}

// Err returns the error that terminated iteration, or nil.
func (it *FeatureIterator) Err() error {
	return it.err
}

// Close releases the iterator's scan handle.
func (it *FeatureIterator) Close() error {
	return it.scan.Close()
}

// Close releases both the geometry and attribute streams. It is idempotent.
func (fr *FeatureReader) Close() error {
	err := fr.shp.Close()
	fr.dbfMu.Lock()
	defer fr.dbfMu.Unlock()
	if fr.dbfF != nil {
		if cerr := fr.dbfF.Close(); err == nil {
			err = cerr
		}
		fr.dbfF = nil
		fr.dbf = nil
	}
	return err
}
