package sessionio

import (
	"fmt"

	"github.com/kbukum/sessionscribe/transcript"
	"github.com/kbukum/sessionscribe/validation"
)

// WriteMerged writes the merged transcript file.
func WriteMerged(path string, mt transcript.MergedTranscript) error {
	if mt.Segments == nil {
		mt.Segments = []transcript.Segment{}
	}
	return writeJSON(path, mt)
}

// LoadMerged reads a merged transcript file written by WriteMerged.
func LoadMerged(path string) (transcript.MergedTranscript, error) {
	var mt transcript.MergedTranscript
	if err := readJSON(path, &mt); err != nil {
		return transcript.MergedTranscript{}, err
	}

	v := validation.New()
	for i, s := range mt.Segments {
		field := fmt.Sprintf("segments[%d]", i)
		v.Finite(field+".start", s.Start).Finite(field+".end", s.End)
		if c, ok := s.ConfidenceValue(); ok {
			v.FloatRange(field+".confidence", c, 0, 1)
		}
	}
	if appErr := v.Validate(); appErr != nil {
		return transcript.MergedTranscript{}, appErr.WithDetail("path", path)
	}

	if mt.Info.SegmentCount == 0 {
		mt.Info.SegmentCount = len(mt.Segments)
	}
	return mt, nil
}
