package reconcile

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/dedup"
	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/logger"
	"github.com/kbukum/sessionscribe/pipeline"
	"github.com/kbukum/sessionscribe/timeline"
	"github.com/kbukum/sessionscribe/transcript"
)

// Outcome is the deduplication result for one input recording.
type Outcome struct {
	Recording transcript.Recording
	Report    dedup.Report
	// Err is set when the recording could not be processed; Recording is then empty.
	Err *errors.AppError
}

// Result is the merged transcript plus everything that was absorbed on the way.
type Result struct {
	Transcript transcript.MergedTranscript
	// Deduplicated holds each input's cleaned recording, in input order.
	Deduplicated []Outcome
	Diagnostics  Diagnostics
}

// DeduplicateAll deduplicates every recording concurrently. Outcomes are in
// input order. A recording that fails carries its error in Outcome.Err; the
// returned error is reserved for invalid params and cancellation.
func DeduplicateAll(ctx context.Context, recs []transcript.Recording, opts Options) ([]Outcome, error) {
	p := opts.params()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log := opts.log().WithContext(ctx)

	return pipeline.ParallelCollect(ctx, recs, opts.workers(len(recs)),
		func(ctx context.Context, i int, rec transcript.Recording) (Outcome, error) {
			if err := ctx.Err(); err != nil {
				return Outcome{}, err
			}
			rec = rec.Clone()
			if opts.SkipDedup {
				return passThrough(rec), nil
			}

			out, report, err := dedup.Deduplicate(rec, p)
			if err != nil {
				appErr := asAppError(err)
				log.WithSource(rec.SourceID).Warn("recording excluded",
					logger.Fields(logger.FieldCode, appErr.Code, logger.FieldError, appErr.Message, logger.FieldPath, rec.Path))
				return Outcome{Report: report, Err: appErr}, nil
			}
			for _, w := range report.Warnings {
				log.WithSource(w.SourceID).Debug(w.Reason,
					logger.Fields(logger.FieldSegmentIndex, w.Index, logger.FieldCode, w.Code))
			}
			log.WithSource(rec.SourceID).Debug("recording deduplicated", logger.Fields(
				"input", report.Input, "kept", report.Kept,
				"duplicates_removed", report.DuplicatesRemoved, "dropped", report.Dropped))
			return Outcome{Recording: out, Report: report}, nil
		})
}

// Reconcile deduplicates recs and merges them into one session transcript.
// recs is not modified.
func Reconcile(ctx context.Context, recs []transcript.Recording, opts Options) (*Result, error) {
	if len(recs) == 0 {
		return nil, errors.EmptyInput()
	}
	ctx = logger.ContextWithRunID(ctx, uuid.NewString())
	log := opts.log().WithContext(ctx)
	started := time.Now()

	outcomes, err := DeduplicateAll(ctx, recs, opts)
	if err != nil {
		return nil, err
	}
	for i, rec := range recs {
		if outcomes[i].Err == nil && !finiteOffset(rec.ClockOffset) {
			appErr := errors.InvalidInput("clock_offset", "clock offset must be finite").
				WithDetail("source_id", rec.SourceID).
				WithDetail("recording_index", i)
			outcomes[i] = Outcome{Report: outcomes[i].Report, Err: appErr}
		}
	}

	mergeInput := make([]transcript.Recording, len(outcomes))
	failed := make(map[int]*errors.AppError)
	for i, o := range outcomes {
		if o.Err != nil {
			failed[i] = o.Err
			// keeps the language in the merged metadata
			mergeInput[i] = transcript.Recording{
				SourceID: recs[i].SourceID, Language: recs[i].Language, Path: recs[i].Path,
			}
			continue
		}
		mergeInput[i] = o.Recording
	}

	mt, mergeReport, err := timeline.Merge(mergeInput, opts.Merge)
	if err != nil {
		return nil, err
	}

	diag := collect(outcomes, failed, mergeReport)
	diag.RunID = logger.RunIDFromContext(ctx)
	for _, ex := range diag.Excluded {
		log.WithSource(ex.SourceID).Warn("recording contributed no segments",
			logger.Fields(logger.FieldCode, ex.Code, logger.FieldError, ex.Reason, logger.FieldPath, ex.Path))
	}
	log.Info("session reconciled", logger.MergeWithDuration(logger.Fields(
		logger.FieldRecordings, len(recs),
		logger.FieldSegments, mt.Info.SegmentCount,
		"duplicates_removed", diag.DuplicatesRemoved,
		"dropped", diag.Dropped,
		"excluded", len(diag.Excluded),
		"rejected", diag.Rejected,
	), time.Since(started)))

	return &Result{Transcript: mt, Deduplicated: outcomes, Diagnostics: diag}, nil
}

func finiteOffset(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// passThrough checks ordering only, for runs that skip deduplication.
func passThrough(rec transcript.Recording) Outcome {
	report := dedup.Report{SourceID: rec.SourceID, Input: len(rec.Segments), Kept: len(rec.Segments)}
	if err := rec.CheckSorted(); err != nil {
		return Outcome{Report: report, Err: asAppError(err)}
	}
	return Outcome{Recording: rec, Report: report}
}

func asAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.Internal(err)
}

// failedIDs lists the source ids of recordings excluded before the merge.
func failedIDs(outcomes []Outcome, failed map[int]*errors.AppError) []string {
	return lo.FilterMap(outcomes, func(o Outcome, i int) (string, bool) {
		_, ok := failed[i]
		return o.Report.SourceID, ok
	})
}
