package shapefile

import (
	"github.com/dhconnelly/rtreego"
)

// Layer is a fully decoded shapefile: every feature materialized in memory
// with an R-tree spatial index over the feature bounding boxes for fast
// viewport queries.
//
// Use a Layer when the working set fits in memory and the same file is
// queried repeatedly; use Reader or FeatureReader for streaming access.
type Layer struct {
	header   FileHeader
	features []Feature
	bounds   Bounds
	index    *spatialIndex
}

// spatialIndex provides O(log n) spatial queries using an R-tree instead of
// a linear scan over all features.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature Feature
	bounds  Bounds
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	point := rtreego.Point{f.bounds.MinX, f.bounds.MinY}

	// The R-tree requires non-zero dimensions, so zero-area boxes (point
	// features, axis-aligned segments) get a small epsilon.
	xLength := f.bounds.MaxX - f.bounds.MinX
	yLength := f.bounds.MaxY - f.bounds.MinY
	const epsilon = 1e-9
	if xLength < epsilon {
		xLength = epsilon
	}
	if yLength < epsilon {
		yLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{xLength, yLength})
	return rect
}

// LoadLayer opens the dataset at path and decodes every record into a Layer.
func LoadLayer(path string, opts LoadOptions) (*Layer, error) {
	src, err := sourceForPath(path)
	if err != nil {
		return nil, err
	}
	return LoadLayerFromSource(src, opts)
}

// LoadLayerFromSource decodes every record supplied by src into a Layer.
func LoadLayerFromSource(src Source, opts LoadOptions) (*Layer, error) {
	fr, err := NewFeatureReader(src)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	total, err := fr.Count()
	if err != nil {
		return nil, err
	}

	layer := &Layer{
		header:   fr.Reader().Header(),
		features: make([]Feature, 0, total),
	}
	it := fr.Reader().AllShapes()
	for it.Next() {
		feat := Feature{Ordinal: it.Ordinal(), Geometry: it.Geometry()}
		if feat.Geometry.IsNull() && opts.SkipNullShapes {
			if opts.Progress != nil {
				opts.Progress(it.Ordinal()+1, total)
			}
			continue
		}
		if !opts.SkipAttributes {
			if feat.Attributes, err = fr.row(it.Ordinal()); err != nil {
				return nil, err
			}
		}
		layer.features = append(layer.features, feat)
		if opts.Progress != nil {
			opts.Progress(it.Ordinal()+1, total)
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	layer.buildSpatialIndex()
	return layer, nil
}

// Features returns all features in file order (minus skipped records).
func (l *Layer) Features() []Feature {
	return l.features
}

// FeatureCount returns the number of features in the layer.
func (l *Layer) FeatureCount() int {
	return len(l.features)
}

// Header returns the main file header the layer was loaded from.
func (l *Layer) Header() FileHeader {
	return l.header
}

// Bounds returns the bounding box covering every non-null feature.
func (l *Layer) Bounds() Bounds {
	return l.bounds
}

// FeaturesInBounds returns all features whose bounding box intersects the
// given box. Null geometries never match.
func (l *Layer) FeaturesInBounds(bounds Bounds) []Feature {
	if l.index == nil || l.index.rtree == nil {
		return l.featuresInBoundsLinear(bounds)
	}

	point := rtreego.Point{bounds.MinX, bounds.MinY}
	const epsilon = 1e-9
	xLength := bounds.MaxX - bounds.MinX
	yLength := bounds.MaxY - bounds.MinY
	if xLength < epsilon {
		xLength = epsilon
	}
	if yLength < epsilon {
		yLength = epsilon
	}
	queryRect, _ := rtreego.NewRect(point, []float64{xLength, yLength})

	spatials := l.index.rtree.SearchIntersect(queryRect)
	result := make([]Feature, 0, len(spatials))
	for _, spatial := range spatials {
		indexed := spatial.(*indexedFeature)
		// The R-tree can return near misses from node overlap and the
		// epsilon padding; re-check the exact boxes.
		if bounds.Intersects(indexed.bounds) {
			result = append(result, indexed.feature)
		}
	}
	return result
}

// featuresInBoundsLinear is the fallback when no spatial index exists.
func (l *Layer) featuresInBoundsLinear(bounds Bounds) []Feature {
	result := make([]Feature, 0, len(l.features)/10)
	for _, feature := range l.features {
		if feature.Geometry.IsNull() {
			continue
		}
		if bounds.Intersects(feature.Geometry.Bounds()) {
			result = append(result, feature)
		}
	}
	return result
}

// buildSpatialIndex creates the R-tree over non-null feature bounds and
// computes the layer bounds.
func (l *Layer) buildSpatialIndex() {
	if len(l.features) == 0 {
		return
	}

	// 2D, 25..50 children per node works well for typical layer sizes.
	rtree := rtreego.NewTree(2, 25, 50)

	var layerBounds *Bounds
	for i := range l.features {
		feature := &l.features[i]
		if feature.Geometry.IsNull() {
			continue
		}
		fb := feature.Geometry.Bounds()
		rtree.Insert(&indexedFeature{feature: *feature, bounds: fb})

		if layerBounds == nil {
			b := fb
			layerBounds = &b
		} else {
			b := layerBounds.Union(fb)
			layerBounds = &b
		}
	}

	l.index = &spatialIndex{rtree: rtree}
	if layerBounds != nil {
		l.bounds = *layerBounds
	}
}
