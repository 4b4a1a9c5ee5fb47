package shapefile

import (
	"fmt"
	"io"
	"runtime"
	"sync"
)

// BatchOptions controls parallel multi-file loading and error handling.
type BatchOptions struct {
	// Parallel enables concurrent loading with a worker pool.
	Parallel bool

	// Workers is the number of loader goroutines. If 0, defaults to
	// runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors causes loading to continue when individual files fail.
	// Failed files are skipped and their errors collected. When false, the
	// first error stops loading and is returned.
	SkipErrors bool

	// Progress is an optional callback invoked after each file finishes
	// (successfully or not) with (loaded, total) counts.
	Progress func(loaded, total int)

	// ErrorLog is an optional writer for per-file error details.
	ErrorLog io.Writer

	// Layer carries the per-file load options.
	Layer LoadOptions
}

// DefaultBatchOptions returns batch options with sensible defaults.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Layer:      DefaultLoadOptions(),
	}
}

// LoadLayersParallel loads multiple shapefiles with a worker pool. The
// returned layers preserve the order of paths, with failed files omitted;
// errors are collected per file.
func LoadLayersParallel(paths []string, opts BatchOptions) ([]*Layer, []error) {
	total := len(paths)
	if total == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if !opts.Parallel {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	loaded := make([]*Layer, total)
	failures := make([]error, total)

	var (
		wg       sync.WaitGroup
		progress sync.Mutex
		done     int
		stop     bool
	)
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				layer, err := LoadLayer(paths[i], opts.Layer)

				progress.Lock()
				if err != nil {
					failures[i] = fmt.Errorf("%s: %w", paths[i], err)
					if opts.ErrorLog != nil {
						fmt.Fprintf(opts.ErrorLog, "load %s: %v\n", paths[i], err)
					}
					if !opts.SkipErrors {
						stop = true
					}
				} else {
					loaded[i] = layer
				}
				done++
				if opts.Progress != nil {
					opts.Progress(done, total)
				}
				progress.Unlock()
			}
		}()
	}

	for i := range paths {
		progress.Lock()
		halt := stop
		progress.Unlock()
		if halt {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var layers []*Layer
	var errs []error
	for i := range paths {
		if loaded[i] != nil {
			layers = append(layers, loaded[i])
		}
		if failures[i] != nil {
			errs = append(errs, failures[i])
		}
	}
	return layers, errs
}
