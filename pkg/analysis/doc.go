// Package analysis runs the contraction engine over examples with caching.
//
// The engine packages are pure and synchronous. This package is the layer
// the CLI and the HTTP API share: it validates input, looks results up in a
// [cache.Cache], runs projection, determinant, blow-down and invariants on
// a miss, and stores the JSON-encoded result.
//
// # Usage
//
//	runner := analysis.NewRunner(c, nil, logger)
//	res, err := runner.Analyze(ctx, f.Graph, f.Examples[0], analysis.Options{})
//
//	batch, err := runner.Batch(ctx, f, analysis.Options{Workers: 8})
//	for _, r := range batch.Results {
//	    if r.Err != nil { ... }
//	}
//
// Batch work is spread over a bounded errgroup. A failing example records
// its error on its own result and does not stop the others; results come
// back in example order.
package analysis
