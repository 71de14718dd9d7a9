package dedup

import (
	"strings"

	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/transcript"
)

// Report describes what one Deduplicate call did to a recording.
type Report struct {
	SourceID          string               `json:"source_id"`
	Input             int                  `json:"input"`
	Kept              int                  `json:"kept"`
	DuplicatesRemoved int                  `json:"duplicates_removed"`
	Dropped           int                  `json:"dropped"`
	Warnings          []transcript.Warning `json:"warnings,omitempty"`
}

// kept tracks the last surviving segment and the raw segment whose text it carries.
type kept struct {
	norm       string
	duration   float64
	confidence *float64
}

// Deduplicate returns a copy of rec with adjacent near-duplicate segments
// collapsed. rec is not modified. Segments with unusable timestamps or no
// text are dropped with a warning; a confidence outside [0, 1] is cleared
// with a warning and the segment kept. The only fatal error is an input whose
// segments are not sorted by start (errors.ErrInputUnsorted) or invalid params.
func Deduplicate(rec transcript.Recording, p Params) (transcript.Recording, Report, error) {
	report := Report{SourceID: rec.SourceID, Input: len(rec.Segments)}
	if err := p.Validate(); err != nil {
		return transcript.Recording{}, report, err
	}
	if err := rec.CheckSorted(); err != nil {
		return transcript.Recording{}, report, err
	}

	out := rec
	out.Segments = make([]transcript.Segment, 0, len(rec.Segments))
	var last kept

	for i, seg := range rec.Segments {
		if !seg.TimesValid() {
			report.drop(transcript.WarningFrom(rec.SourceID, i,
				errors.InvalidSegment(rec.SourceID, i, transcript.InvalidTimesReason)))
			continue
		}
		norm := Normalize(seg.Text)
		if norm == "" {
			report.drop(transcript.WarningFrom(rec.SourceID, i, errors.EmptyText(rec.SourceID, i)))
			continue
		}

		cand := seg.Copy()
		cand.Text = strings.TrimSpace(cand.Text)
		cand.SourceID = rec.SourceOf(seg)
		if !cand.ConfidenceValid() {
			report.Warnings = append(report.Warnings,
				transcript.WarningFrom(rec.SourceID, i, errors.InvalidConfidence(rec.SourceID, i, *cand.Confidence)))
			cand.Confidence = nil
		}

		if n := len(out.Segments); n > 0 {
			prev := &out.Segments[n-1]
			if cand.Start-prev.End <= p.TimeWindow && normalizedSimilarity(last.norm, norm) >= p.SimilarityThreshold {
				if candidateWins(last, cand) {
					prev.Text = cand.Text
					prev.Confidence = cand.Confidence
					last = kept{norm: norm, duration: cand.Duration(), confidence: cand.Confidence}
				}
				prev.End = max(prev.End, cand.End)
				report.DuplicatesRemoved++
				continue
			}
		}

		out.Segments = append(out.Segments, cand)
		last = kept{norm: norm, duration: cand.Duration(), confidence: cand.Confidence}
	}

	report.Kept = len(out.Segments)
	return out, report, nil
}

// candidateWins picks between the kept segment and a duplicate candidate:
// higher confidence first, then the shorter duration, then the kept one.
func candidateWins(k kept, cand transcript.Segment) bool {
	if k.confidence != nil && cand.Confidence != nil && *k.confidence != *cand.Confidence {
		return *cand.Confidence > *k.confidence
	}
	if d := cand.Duration(); d != k.duration {
		return d < k.duration
	}
	return false
}

func (r *Report) drop(w transcript.Warning) {
	r.Dropped++
	r.Warnings = append(r.Warnings, w)
}
