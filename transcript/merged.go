package transcript

import "time"

// MergedTranscript is the reconciled, session-ordered transcript.
type MergedTranscript struct {
	// Segments are on the session clock, ordered by Start.
	Segments []Segment `json:"segments"`
	// Info holds aggregate metadata about the merge.
	Info MergedInfo `json:"merged_info"`
}

// MergedInfo is the aggregate metadata consumed by content processing.
type MergedInfo struct {
	// Usernames lists contributing sources in first-appearance order.
	Usernames []string `json:"usernames"`
	// Languages lists distinct languages of all supplied recordings.
	Languages []string `json:"languages"`
	// TotalDuration is max(end) - min(start) over Segments, 0 when empty.
	TotalDuration float64 `json:"total_duration"`
	// MergedAt is when the merge ran (provenance, not session time).
	MergedAt time.Time `json:"merged_at"`
	// SegmentCount is len(Segments).
	SegmentCount int `json:"segment_count"`
	// SourceFiles lists the files the recordings were loaded from.
	SourceFiles []string `json:"source_files,omitempty"`
}

// Bounds returns the earliest start and latest end over segs.
func Bounds(segs []Segment) (start, end float64, ok bool) {
	if len(segs) == 0 {
		return 0, 0, false
	}
	start, end = segs[0].Start, segs[0].End
	for _, s := range segs[1:] {
		if s.Start < start {
			start = s.Start
		}
		if s.End > end {
			end = s.End
		}
	}
	return start, end, true
}

// TotalDuration returns max(end) - min(start), or 0 for no segments.
func TotalDuration(segs []Segment) float64 {
	start, end, ok := Bounds(segs)
	if !ok {
		return 0
	}
	return end - start
}
