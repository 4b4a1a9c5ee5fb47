package shapefile

// LoadOptions configures how a Layer is loaded.
type LoadOptions struct {
	// SkipNullShapes drops null shape records from the layer instead of
	// keeping them as features with null geometry.
	// Default: false (null records are kept, preserving ordinals).
	SkipNullShapes bool

	// SkipAttributes loads geometries only, leaving every feature's
	// attribute row nil even when the dataset ships an attribute file.
	// Default: false.
	SkipAttributes bool

	// Progress is an optional callback invoked after each record is loaded
	// with (loaded, total) counts.
	Progress func(loaded, total int)
}

// DefaultLoadOptions returns load options with defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		SkipNullShapes: false,
		SkipAttributes: false,
		Progress:       nil,
	}
}
