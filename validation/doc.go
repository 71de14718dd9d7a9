// Package validation checks configuration values and decoded transcript
// files before they reach the engine.
//
// It supports both struct tag validation (using the validator library)
// and programmatic validation with error collection. Both report an
// *errors.AppError whose details list every offending field.
//
// # Struct Tag Validation
//
//	type segmentFile struct {
//	    Start float64 `json:"start" validate:"gte=0"`
//	    End   float64 `json:"end" validate:"gtefield=Start"`
//	}
//	err := validation.Validate(seg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.FloatRange("dedup.similarity_threshold", p.SimilarityThreshold, 0, 1)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
