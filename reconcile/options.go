package reconcile

import (
	"runtime"

	"github.com/kbukum/sessionscribe/dedup"
	"github.com/kbukum/sessionscribe/logger"
	"github.com/kbukum/sessionscribe/timeline"
)

// Options configures a reconcile run.
type Options struct {
	// Dedup parameters. The zero value means dedup.DefaultParams().
	Dedup dedup.Params
	// Merge options passed to timeline.Merge.
	Merge timeline.Options
	// Workers bounds concurrent deduplication. <= 0 means one per CPU.
	Workers int
	// SkipDedup merges recordings as given, only checking their ordering.
	SkipDedup bool
	// Logger defaults to logger.Get("reconcile").
	Logger *logger.Logger
}

func (o Options) params() dedup.Params {
	if o.Dedup == (dedup.Params{}) {
		return dedup.DefaultParams()
	}
	return o.Dedup
}

func (o Options) workers(jobs int) int {
	n := o.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, jobs))
}

func (o Options) log() *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Get("reconcile")
}
