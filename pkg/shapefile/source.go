package shapefile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
)

// FileKind names the role of one member file of a shapefile dataset.
type FileKind int

const (
	// FileGeometry is the main geometry file (.shp).
	FileGeometry FileKind = iota

	// FileAttributes is the attribute table (.dbf).
	FileAttributes

	// FileIndex is the record offset index (.shx).
	FileIndex
)

func (k FileKind) ext() string {
	switch k {
	case FileGeometry:
		return ".shp"
	case FileAttributes:
		return ".dbf"
	case FileIndex:
		return ".shx"
	default:
		return ""
	}
}

// Source supplies seekable byte streams for the member files of one
// shapefile dataset. A missing optional member (attributes, index) is
// reported with an error matching fs.ErrNotExist.
//
// Each Open call returns an independent stream; callers own the returned
// handle and must close it.
type Source interface {
	Open(kind FileKind) (io.ReadSeekCloser, error)
}

// DirSource reads the member files of a dataset from the filesystem,
// deriving sibling paths from a base path by extension. Both lower- and
// upper-case extensions are tried, since shapefile sets frequently ship with
// DOS-style upper-case names.
type DirSource struct {
	base string // path without extension
}

// NewDirSource returns a source for the dataset at path. The path may name
// the .shp file itself or the bare base path.
func NewDirSource(path string) DirSource {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".shp") {
		path = strings.TrimSuffix(path, ext)
	}
	return DirSource{base: path}
}

// Open opens the member file of the given kind.
func (s DirSource) Open(kind FileKind) (io.ReadSeekCloser, error) {
	f, err := os.Open(s.base + kind.ext())
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	upper, err2 := os.Open(s.base + strings.ToUpper(kind.ext()))
	if err2 != nil {
		return nil, err // report the conventional lower-case name
	}
	return upper, nil
}

// ZipSource reads a zipped shapefile set. Member files are inflated into
// memory once at open time, so streams handed out later are independent and
// seekable.
type ZipSource struct {
	name    string
	members map[FileKind][]byte
}

// OpenZipSource opens a .zip archive containing a shapefile set and locates
// the first .shp entry plus its .dbf and .shx siblings, matching names
// case-insensitively.
func OpenZipSource(path string) (*ZipSource, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	// klauspost's inflater is a drop-in replacement for the stdlib one and
	// noticeably faster on large geometry files.
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	var base string
	for _, f := range zr.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".shp") {
			base = strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
			break
		}
	}
	if base == "" {
		return nil, fmt.Errorf("archive %s: no .shp entry found", path)
	}

	src := &ZipSource{name: base, members: make(map[FileKind][]byte)}
	for _, kind := range []FileKind{FileGeometry, FileAttributes, FileIndex} {
		want := base + kind.ext()
		for _, f := range zr.File {
			if !strings.EqualFold(f.Name, want) {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", f.Name, err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			src.members[kind] = data
			break
		}
	}
	return src, nil
}

// Name returns the base name of the dataset inside the archive.
func (s *ZipSource) Name() string {
	return s.name
}

// Open returns an in-memory stream over the member file of the given kind.
func (s *ZipSource) Open(kind FileKind) (io.ReadSeekCloser, error) {
	data, ok := s.members[kind]
	if !ok {
		return nil, fmt.Errorf("%s%s: %w", s.name, kind.ext(), fs.ErrNotExist)
	}
	return &memberReader{Reader: bytes.NewReader(data)}, nil
}

// memberReader adapts bytes.Reader to io.ReadSeekCloser.
type memberReader struct {
	*bytes.Reader
}

func (m *memberReader) Close() error {
	return nil
}
