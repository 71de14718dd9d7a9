package reconcile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/dedup"
	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/timeline"
	"github.com/kbukum/sessionscribe/transcript"
)

// Diagnostics counts and lists the recoverable issues of one reconcile run.
type Diagnostics struct {
	RunID             string               `json:"run_id"`
	Recordings        []dedup.Report       `json:"recordings"`
	Excluded          []timeline.Exclusion `json:"excluded,omitempty"`
	Warnings          []transcript.Warning `json:"warnings,omitempty"`
	DuplicatesRemoved int                  `json:"duplicates_removed"`
	Dropped           int                  `json:"dropped"`
	SkippedEmpty      int                  `json:"skipped_empty"`
	// Rejected counts warnings for recordings excluded because their input
	// was invalid, as opposed to recoverable data-quality issues.
	Rejected int `json:"rejected"`
}

// HasIssues reports whether anything was dropped, skipped or excluded.
func (d Diagnostics) HasIssues() bool {
	return len(d.Excluded) > 0 || len(d.Warnings) > 0
}

// Summary is a one-line human readable account of the run.
func (d Diagnostics) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d recordings, %d duplicates removed, %d segments dropped",
		len(d.Recordings), d.DuplicatesRemoved, d.Dropped+d.SkippedEmpty)
	if len(d.Excluded) > 0 {
		names := lo.Map(d.Excluded, func(e timeline.Exclusion, _ int) string {
			return fmt.Sprintf("%s (%s)", e.SourceID, e.Code)
		})
		fmt.Fprintf(&b, ", excluded: %s", strings.Join(names, ", "))
	}
	return b.String()
}

func collect(outcomes []Outcome, failed map[int]*errors.AppError, mr timeline.Report) Diagnostics {
	reports := lo.Map(outcomes, func(o Outcome, _ int) dedup.Report { return o.Report })
	d := Diagnostics{
		Recordings:   reports,
		SkippedEmpty: mr.SkippedEmpty + mr.SkippedBad,
		DuplicatesRemoved: lo.Reduce(reports, func(n int, r dedup.Report, _ int) int {
			return n + r.DuplicatesRemoved
		}, 0),
		Dropped: lo.Reduce(reports, func(n int, r dedup.Report, _ int) int { return n + r.Dropped }, 0),
	}
	for _, r := range reports {
		d.Warnings = append(d.Warnings, r.Warnings...)
	}

	// recordings that failed before the merge show up there as empty;
	// report the real cause instead
	excludedEarly := failedIDs(outcomes, failed)
	for _, ex := range mr.Excluded {
		if appErr, ok := failed[ex.Index]; ok {
			ex.Code = appErr.Code
			ex.Reason = appErr.Message
			d.Warnings = append(d.Warnings, transcript.WarningFrom(ex.SourceID, transcript.RecordingLevel, appErr))
		}
		d.Excluded = append(d.Excluded, ex)
	}
	for _, w := range mr.Warnings {
		if w.Index == transcript.RecordingLevel && w.Code == errors.ErrCodeNoSegments && lo.Contains(excludedEarly, w.SourceID) {
			continue
		}
		d.Warnings = append(d.Warnings, w)
	}
	d.Rejected = lo.CountBy(d.Warnings, func(w transcript.Warning) bool {
		return !errors.IsRecoverableCode(w.Code)
	})
	return d
}
