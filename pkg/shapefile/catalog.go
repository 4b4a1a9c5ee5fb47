package shapefile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beetlebugorg/shapefile/internal/shp"
)

// Catalog provides spatial queries over a collection of shapefiles without
// decoding any records: each entry holds only the metadata readable from a
// file's 100-byte header. This makes it cheap to decide which files in a
// directory tree are worth opening for a region of interest.
type Catalog struct {
	entries []CatalogEntry
}

// CatalogEntry holds the indexed metadata of a single shapefile.
type CatalogEntry struct {
	Path       string // path to the .shp file
	Name       string // base name without extension
	ShapeType  ShapeType
	Bounds     Bounds
	FileLength int64 // geometry file length in bytes
}

// BuildCatalog scans a directory tree for .shp files and indexes their
// headers. Files whose header cannot be parsed are skipped. It fails only
// when the walk itself fails or no shapefile is found.
func BuildCatalog(root string) (*Catalog, error) {
	var entries []CatalogEntry
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".shp") {
			return nil
		}
		entry, err := readCatalogEntry(path)
		if err != nil {
			return nil // unreadable header, skip
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no shapefiles found in %s", root)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return &Catalog{entries: entries}, nil
}

func readCatalogEntry(path string) (CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return CatalogEntry{}, err
	}
	defer f.Close()

	hdr, err := shp.ParseHeader(shp.NewCursor(f))
	if err != nil {
		return CatalogEntry{}, err
	}

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return CatalogEntry{
		Path:       path,
		Name:       name,
		ShapeType:  hdr.ShapeType,
		Bounds:     boxBounds(hdr.BBox),
		FileLength: hdr.FileLength,
	}, nil
}

// Query returns the entries whose bounds intersect the given box, in path
// order.
func (c *Catalog) Query(bounds Bounds) []CatalogEntry {
	var result []CatalogEntry
	for _, entry := range c.entries {
		if bounds.Intersects(entry.Bounds) {
			result = append(result, entry)
		}
	}
	return result
}

// Count returns the number of shapefiles in the catalog.
func (c *Catalog) Count() int {
	return len(c.entries)
}

// All returns every entry in path order.
func (c *Catalog) All() []CatalogEntry {
	return c.entries
}

// Bounds returns the union of all entry bounds.
func (c *Catalog) Bounds() Bounds {
	if len(c.entries) == 0 {
		return Bounds{}
	}
	bounds := c.entries[0].Bounds
	for _, entry := range c.entries[1:] {
		bounds = bounds.Union(entry.Bounds)
	}
	return bounds
}
