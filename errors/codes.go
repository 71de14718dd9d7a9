package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input validation errors (fatal to the call)
const (
	// ErrCodeInputUnsorted indicates a segment list is not ordered by start time.
	ErrCodeInputUnsorted ErrorCode = "INPUT_UNSORTED"
	// ErrCodeEmptyInput indicates no recordings were supplied.
	ErrCodeEmptyInput ErrorCode = "EMPTY_INPUT"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidConfig indicates a configuration value is out of range.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Data-quality issues (recoverable, reported as warnings)
const (
	// ErrCodeNoSegments indicates a recording contributes no segments.
	ErrCodeNoSegments ErrorCode = "NO_SEGMENTS"
	// ErrCodeInvalidSegment indicates a segment with unusable timestamps.
	ErrCodeInvalidSegment ErrorCode = "INVALID_SEGMENT"
	// ErrCodeEmptyText indicates a segment whose text is empty after normalization.
	ErrCodeEmptyText ErrorCode = "EMPTY_TEXT"
	// ErrCodeInvalidConfidence indicates a confidence outside [0, 1]; the segment is kept without it.
	ErrCodeInvalidConfidence ErrorCode = "INVALID_CONFIDENCE"
)

// Collaborator and internal errors
const (
	// ErrCodeIO indicates reading or writing a transcript file failed.
	ErrCodeIO ErrorCode = "IO_ERROR"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeIO:       true,
	ErrCodeInternal: false,
}

// recoverableCodes are data-quality codes that skip a unit instead of failing the call.
var recoverableCodes = map[ErrorCode]bool{
	ErrCodeNoSegments:        true,
	ErrCodeInvalidSegment:    true,
	ErrCodeEmptyText:         true,
	ErrCodeInvalidConfidence: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsRecoverableCode returns true if the code describes a skipped unit rather than a failed call.
func IsRecoverableCode(code ErrorCode) bool {
	return recoverableCodes[code]
}
