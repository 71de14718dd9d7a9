// Package pipeline runs per-recording work on a bounded worker pool.
//
// A Pipeline is a lazy, pull-based stream: FromSlice feeds it, Parallel
// fans values out to workers and ForEach drains it. ParallelCollect wraps
// the three so callers get results back in input order no matter which
// worker finishes first. Recording loads and deduplication both go through
// it, which keeps session output independent of scheduling.
//
//	reports, err := pipeline.ParallelCollect(ctx, recs, workers,
//	    func(ctx context.Context, i int, rec transcript.Recording) (dedup.Report, error) { ... })
package pipeline
