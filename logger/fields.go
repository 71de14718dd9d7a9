package logger

import "time"

// Field keys shared by every sessionscribe log line.
const (
	FieldService      = "service"
	FieldComponent    = "component"
	FieldRunID        = "run_id"
	FieldSourceID     = "source_id"
	FieldSegmentIndex = "segment_index"
	FieldRecordings   = "recordings"
	FieldSegments     = "segments"
	FieldPath         = "path"
	FieldCode         = "code"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
)

// Fields builds a field map from alternating keys and values. Non-string
// keys and a trailing key without a value are ignored.
//
//	log.Info("merged", logger.Fields(logger.FieldSegments, 120, logger.FieldRecordings, 4))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// MergeWithDuration sets the duration field, in milliseconds, on fields.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
