package dedup

import (
	"github.com/kbukum/sessionscribe/validation"
)

const (
	// DefaultTimeWindow is the largest gap, in seconds, between the kept
	// segment's end and a candidate's start for the pair to count as adjacent.
	DefaultTimeWindow = 2.0
	// DefaultSimilarityThreshold is the minimum normalized similarity (0..1)
	// for two adjacent segments to count as duplicates.
	DefaultSimilarityThreshold = 0.92
)

// Params tunes the deduplicator.
type Params struct {
	TimeWindow          float64 `json:"time_window" mapstructure:"time_window"`
	SimilarityThreshold float64 `json:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// DefaultParams returns the placeholder tuning pending calibration on real sessions.
func DefaultParams() Params {
	return Params{
		TimeWindow:          DefaultTimeWindow,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Validate rejects negative windows and thresholds outside (0, 1].
func (p Params) Validate() error {
	v := validation.New().
		NonNegative("time_window", p.TimeWindow).
		FloatRange("similarity_threshold", p.SimilarityThreshold, 0, 1).
		Custom(p.SimilarityThreshold > 0, "similarity_threshold", "must be greater than 0")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
