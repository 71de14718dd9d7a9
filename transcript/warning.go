package transcript

import (
	"fmt"

	"github.com/kbukum/sessionscribe/errors"
)

// RecordingLevel is the Warning.Index of issues that concern a whole recording.
const RecordingLevel = -1

// Warning is a recoverable data-quality issue: the unit was skipped, the call went on.
type Warning struct {
	SourceID string           `json:"source_id"`
	Index    int              `json:"segment_index"`
	Code     errors.ErrorCode `json:"code"`
	Reason   string           `json:"reason"`
}

// WarningFrom builds a Warning from an AppError's code, message and details.
func WarningFrom(sourceID string, index int, appErr *errors.AppError) Warning {
	return Warning{SourceID: sourceID, Index: index, Code: appErr.Code, Reason: appErr.Message}
}

func (w Warning) String() string {
	if w.Index == RecordingLevel {
		return fmt.Sprintf("%s: %s", w.SourceID, w.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", w.SourceID, w.Index, w.Reason)
}
