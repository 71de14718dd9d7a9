package transcript

import (
	"math"
	"strings"
)

// Segment represents one time-aligned utterance.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// SourceID is the username of the recording the segment came from.
	SourceID string `json:"username"`
	// Confidence is the ASR-reported confidence, when the engine emits one.
	Confidence *float64 `json:"confidence,omitempty"`
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Shifted returns a copy with offset added to both timestamps.
func (s Segment) Shifted(offset float64) Segment {
	out := s.Copy()
	out.Start += offset
	out.End += offset
	return out
}

// Copy returns a segment that shares no memory with s.
func (s Segment) Copy() Segment {
	out := s
	if s.Confidence != nil {
		c := *s.Confidence
		out.Confidence = &c
	}
	return out
}

// HasText reports whether the trimmed text is non-empty.
func (s Segment) HasText() bool {
	return strings.TrimSpace(s.Text) != ""
}

// InvalidTimesReason is the warning text for segments failing TimesValid.
const InvalidTimesReason = "timestamps are negative or not finite, or end before start"

// TimesValid reports whether both timestamps are finite and non-negative
// and End >= Start.
func (s Segment) TimesValid() bool {
	if !finite(s.Start) || !finite(s.End) || s.Start < 0 {
		return false
	}
	return s.End >= s.Start
}

// ConfidenceValid reports whether the confidence is absent or a finite
// value in [0, 1].
func (s Segment) ConfidenceValid() bool {
	c, ok := s.ConfidenceValue()
	return !ok || (finite(c) && c >= 0 && c <= 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ConfidenceValue returns the confidence and whether one is present.
func (s Segment) ConfidenceValue() (float64, bool) {
	if s.Confidence == nil {
		return 0, false
	}
	return *s.Confidence, true
}
