// Package shapefile reads ESRI Shapefile datasets: the .shp geometry file,
// the optional .shx record offset index, and the optional .dbf attribute
// table.
//
// Three access styles are provided. Reader gives random and sequential
// access to raw geometry records. FeatureReader joins geometries with their
// attribute rows by ordinal and supports bounding-box-filtered iteration.
// Layer materializes a whole dataset in memory behind an R-tree spatial
// index for repeated viewport queries, with LayerCache and BuildCatalog
// layered on top for multi-file workloads.
//
// Datasets open from a directory (base path or .shp path) or from a .zip
// archive:
//
//	r, err := shapefile.Open("coastline.shp")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	it := r.AllShapes()
//	for it.Next() {
//		g := it.Geometry()
//		// ...
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
//
// A Reader is safe for concurrent use. Decoded geometries are plain values
// and stay valid after the reader is closed.
package shapefile
