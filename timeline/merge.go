package timeline

import (
	"container/heap"
	"math"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/transcript"
)

// Options tune a merge.
type Options struct {
	// Priority orders source ids for tie-breaks; unlisted sources follow alphabetically.
	Priority []string
	// Now stamps MergedInfo.MergedAt. Defaults to time.Now().UTC().
	Now func() time.Time
}

// Exclusion records a recording that contributed no segments to the merge.
type Exclusion struct {
	Index    int              `json:"index"`
	SourceID string           `json:"source_id"`
	Path     string           `json:"path,omitempty"`
	Code     errors.ErrorCode `json:"code"`
	Reason   string           `json:"reason"`
}

// Report carries the recoverable issues absorbed by Merge.
type Report struct {
	Excluded     []Exclusion          `json:"excluded,omitempty"`
	Warnings     []transcript.Warning `json:"warnings,omitempty"`
	SkippedEmpty int                  `json:"skipped_empty"`
	SkippedBad   int                  `json:"skipped_invalid"`
}

// Merge combines recs into one transcript ordered by absolute start time.
//
// It fails with errors.ErrEmptyInput for zero recordings and with
// errors.ErrInputUnsorted when any recording is not sorted by start.
// recs is never modified; the output shares no memory with it.
func Merge(recs []transcript.Recording, opts Options) (transcript.MergedTranscript, Report, error) {
	var report Report
	if len(recs) == 0 {
		return transcript.MergedTranscript{}, report, errors.EmptyInput()
	}
	for i, rec := range recs {
		if err := rec.CheckSorted(); err != nil {
			return transcript.MergedTranscript{}, report, err
		}
		if math.IsNaN(rec.ClockOffset) || math.IsInf(rec.ClockOffset, 0) {
			return transcript.MergedTranscript{}, report,
				errors.InvalidInput("clock_offset", "clock offset must be finite").
					WithDetail("source_id", recordingID(rec)).
					WithDetail("recording_index", i)
		}
	}

	rank := ranks(recs, opts.Priority)
	languages := mapset.NewSet[string]()
	contributed := make([]int, len(recs))
	total := 0

	q := make(cursorQueue, 0, len(recs))
	for i, rec := range recs {
		if lang := strings.TrimSpace(rec.Language); lang != "" {
			languages.Add(lang)
		}
		total += len(rec.Segments)
		c := &cursor{rec: i, pos: -1, rank: rank[i]}
		if advance(c, recs[i], &report) {
			q = append(q, c)
		}
	}
	heap.Init(&q)

	segments := make([]transcript.Segment, 0, total)
	for q.Len() > 0 {
		c := q[0]
		rec := recs[c.rec]
		seg := rec.Segments[c.pos]
		out := seg.Shifted(rec.ClockOffset)
		out.Text = strings.TrimSpace(out.Text)
		out.SourceID = rec.SourceOf(seg)
		if !out.ConfidenceValid() {
			id := recordingID(rec)
			report.Warnings = append(report.Warnings,
				transcript.WarningFrom(id, c.pos, errors.InvalidConfidence(id, c.pos, *out.Confidence)))
			out.Confidence = nil
		}
		segments = append(segments, out)
		contributed[c.rec]++

		if advance(c, rec, &report) {
			heap.Fix(&q, 0)
		} else {
			heap.Pop(&q)
		}
	}

	for i, rec := range recs {
		if contributed[i] > 0 {
			continue
		}
		id := recordingID(rec)
		appErr := errors.NoSegments(id)
		report.Excluded = append(report.Excluded, Exclusion{
			Index: i, SourceID: id, Path: rec.Path, Code: appErr.Code, Reason: appErr.Message,
		})
		report.Warnings = append(report.Warnings, transcript.WarningFrom(id, transcript.RecordingLevel, appErr))
	}

	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	langs := languages.ToSlice()
	sort.Strings(langs)

	mt := transcript.MergedTranscript{
		Segments: segments,
		Info: transcript.MergedInfo{
			Usernames:     usernames(segments),
			Languages:     langs,
			TotalDuration: transcript.TotalDuration(segments),
			MergedAt:      now(),
			SegmentCount:  len(segments),
			SourceFiles:   sourceFiles(recs),
		},
	}
	return mt, report, nil
}

// advance moves c to the next usable segment of rec, skipping and recording
// segments with empty text or unusable timestamps. It reports whether one was found.
func advance(c *cursor, rec transcript.Recording, report *Report) bool {
	id := recordingID(rec)
	for c.pos++; c.pos < len(rec.Segments); c.pos++ {
		seg := rec.Segments[c.pos]
		if !seg.TimesValid() {
			report.SkippedBad++
			report.Warnings = append(report.Warnings, transcript.WarningFrom(id, c.pos,
				errors.InvalidSegment(id, c.pos, transcript.InvalidTimesReason)))
			continue
		}
		if !seg.HasText() {
			report.SkippedEmpty++
			report.Warnings = append(report.Warnings, transcript.WarningFrom(id, c.pos, errors.EmptyText(id, c.pos)))
			continue
		}
		c.absStart = seg.Start + rec.ClockOffset
		return true
	}
	return false
}

// usernames lists source ids in first-appearance order.
func usernames(segs []transcript.Segment) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range segs {
		if s.SourceID == "" {
			continue
		}
		if _, ok := seen[s.SourceID]; ok {
			continue
		}
		seen[s.SourceID] = struct{}{}
		out = append(out, s.SourceID)
	}
	return out
}

func sourceFiles(recs []transcript.Recording) []string {
	var out []string
	for _, r := range recs {
		if r.Path != "" {
			out = append(out, r.Path)
		}
	}
	return out
}
