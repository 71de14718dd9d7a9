package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Sentinels for errors.Is checks. They match any AppError carrying the same code.
var (
	ErrInputUnsorted = &AppError{Code: ErrCodeInputUnsorted, Message: "segments are not sorted by start time"}
	ErrEmptyInput    = &AppError{Code: ErrCodeEmptyInput, Message: "no recordings supplied"}
	ErrNoSegments    = &AppError{Code: ErrCodeNoSegments, Message: "recording contributes no segments"}
)

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Engine Error Constructors ---

// Unsorted creates an AppError for a segment list that goes backwards in time at index.
func Unsorted(sourceID string, index int) *AppError {
	return &AppError{
		Code:    ErrCodeInputUnsorted,
		Message: fmt.Sprintf("segment %d of %q starts before its predecessor", index, sourceID),
		Details: map[string]any{"source_id": sourceID, "segment_index": index},
	}
}

// EmptyInput creates an AppError for a merge called with zero recordings.
func EmptyInput() *AppError {
	return &AppError{Code: ErrCodeEmptyInput, Message: "at least one recording is required"}
}

// NoSegments creates an AppError for a recording that ended up empty.
func NoSegments(sourceID string) *AppError {
	return &AppError{
		Code:    ErrCodeNoSegments,
		Message: fmt.Sprintf("recording %q contributes no segments", sourceID),
		Details: map[string]any{"source_id": sourceID},
	}
}

// InvalidSegment creates an AppError for a segment with unusable timestamps.
func InvalidSegment(sourceID string, index int, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidSegment,
		Message: fmt.Sprintf("segment %d of %q: %s", index, sourceID, reason),
		Details: map[string]any{"source_id": sourceID, "segment_index": index},
	}
}

// EmptyText creates an AppError for a segment whose text normalizes to nothing.
func EmptyText(sourceID string, index int) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyText,
		Message: fmt.Sprintf("segment %d of %q has no text", index, sourceID),
		Details: map[string]any{"source_id": sourceID, "segment_index": index},
	}
}

// InvalidConfidence creates an AppError for a confidence outside [0, 1].
func InvalidConfidence(sourceID string, index int, value float64) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfidence,
		Message: fmt.Sprintf("segment %d of %q: confidence %v outside [0, 1], ignored", index, sourceID, value),
		Details: map[string]any{"source_id": sourceID, "segment_index": index},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// InvalidConfig creates a new AppError for a configuration value that cannot be used.
func InvalidConfig(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("%s %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// IO creates a new AppError for a failed file operation. Missing files and
// permission errors are not retryable.
func IO(op, path string, cause error) *AppError {
	permanent := stderrors.Is(cause, fs.ErrNotExist) || stderrors.Is(cause, fs.ErrPermission)
	return &AppError{
		Code: ErrCodeIO, Message: fmt.Sprintf("%s %s failed", op, path),
		Retryable: IsRetryableCode(ErrCodeIO) && !permanent, Cause: cause,
		Details: map[string]any{"operation": op, "path": path},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable reports whether err carries an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// CodeOf returns the code of the first AppError in err's chain, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
