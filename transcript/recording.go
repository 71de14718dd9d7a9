package transcript

import (
	"github.com/kbukum/sessionscribe/errors"
)

// Recording is one source's ordered segments plus language and clock offset.
type Recording struct {
	// SourceID identifies the speaker/device. Segments without a username inherit it.
	SourceID string `json:"username,omitempty"`
	// Language is the detected or declared language code.
	Language string `json:"language"`
	// ClockOffset is added to every timestamp to reach the session clock.
	ClockOffset float64 `json:"clock_offset,omitempty"`
	// Segments are ordered by non-decreasing Start.
	Segments []Segment `json:"segments"`
	// Path is the file the recording was loaded from, if any.
	Path string `json:"-"`
}

// Clone returns a deep copy of the recording.
func (r Recording) Clone() Recording {
	out := r
	if r.Segments != nil {
		out.Segments = make([]Segment, len(r.Segments))
		for i, s := range r.Segments {
			out.Segments[i] = s.Copy()
		}
	}
	return out
}

// CheckSorted returns errors.ErrInputUnsorted (with source id and segment
// index details) for the first segment that starts before an earlier one.
// Segments failing TimesValid are skipped here; consumers drop them.
func (r Recording) CheckSorted() error {
	prev := -1
	for i, seg := range r.Segments {
		if !seg.TimesValid() {
			continue
		}
		if prev >= 0 && seg.Start < r.Segments[prev].Start {
			appErr := errors.Unsorted(r.SourceID, i)
			if r.Path != "" {
				appErr.WithDetail("path", r.Path)
			}
			return appErr
		}
		prev = i
	}
	return nil
}

// SourceOf returns the username of seg, falling back to the recording's SourceID.
func (r Recording) SourceOf(seg Segment) string {
	if seg.SourceID != "" {
		return seg.SourceID
	}
	return r.SourceID
}
