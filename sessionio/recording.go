package sessionio

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/pipeline"
	"github.com/kbukum/sessionscribe/resilience"
	"github.com/kbukum/sessionscribe/transcript"
	"github.com/kbukum/sessionscribe/validation"
)

// recordingFile is the on-disk shape of one source's transcript.
type recordingFile struct {
	Username    string        `json:"username,omitempty"`
	Language    string        `json:"language"`
	ClockOffset *float64      `json:"clock_offset,omitempty"`
	Segments    []segmentFile `json:"segments" validate:"required"`
}

// segmentFile carries no range rules: a bad segment is dropped later with a
// warning instead of failing the whole file.
type segmentFile struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Username   string   `json:"username,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// LoadOptions tune LoadAll.
type LoadOptions struct {
	// Workers bounds concurrent reads. <= 0 means one per CPU.
	Workers int
	// ClockOffsets by source id, used for files that carry no clock_offset.
	ClockOffsets map[string]float64
	// Retry governs re-reads after transient IO errors. Nil uses
	// resilience.DefaultRetryConfig.
	Retry *resilience.RetryConfig
}

func (o LoadOptions) workers(jobs int) int {
	n := o.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, jobs))
}

func (o LoadOptions) retry() resilience.RetryConfig {
	if o.Retry != nil {
		return *o.Retry
	}
	return resilience.DefaultRetryConfig()
}

// Failure is a file LoadAll could not turn into a recording.
type Failure struct {
	Path string
	Err  *errors.AppError
}

// LoadRecording reads and validates one recording file.
func LoadRecording(path string) (transcript.Recording, error) {
	return loadRecording(path, nil)
}

func loadRecording(path string, offsets map[string]float64) (transcript.Recording, error) {
	var f recordingFile
	if err := readJSON(path, &f); err != nil {
		return transcript.Recording{}, err
	}
	if err := validation.Validate(f); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return transcript.Recording{}, appErr.WithDetail("path", path)
		}
		return transcript.Recording{}, err
	}

	rec := transcript.Recording{
		SourceID: sourceID(path, f),
		Language: strings.TrimSpace(f.Language),
		Path:     path,
		Segments: lo.Map(f.Segments, func(s segmentFile, _ int) transcript.Segment {
			return transcript.Segment{
				Start: s.Start, End: s.End, Text: s.Text,
				SourceID: s.Username, Confidence: s.Confidence,
			}
		}),
	}
	switch {
	case f.ClockOffset != nil:
		rec.ClockOffset = *f.ClockOffset
	case offsets != nil:
		rec.ClockOffset = lookupOffset(offsets, rec.SourceID)
	}
	return rec, nil
}

// lookupOffset matches the source id exactly first, then case-insensitively,
// since config keys arrive lower-cased.
func lookupOffset(offsets map[string]float64, id string) float64 {
	if v, ok := offsets[id]; ok {
		return v
	}
	for k, v := range offsets {
		if strings.EqualFold(k, id) {
			return v
		}
	}
	return 0
}

// LoadAll loads paths concurrently. Recordings come back in path order;
// files that fail to load are reported as failures and skipped. The error
// is reserved for cancellation.
func LoadAll(ctx context.Context, paths []string, opts LoadOptions) ([]transcript.Recording, []Failure, error) {
	type loaded struct {
		rec transcript.Recording
		err *errors.AppError
	}
	retry := opts.retry()
	results, err := pipeline.ParallelCollect(ctx, paths, opts.workers(len(paths)),
		func(ctx context.Context, _ int, path string) (loaded, error) {
			if err := ctx.Err(); err != nil {
				return loaded{}, err
			}
			rec, err := resilience.Retry(ctx, retry, func() (transcript.Recording, error) {
				return loadRecording(path, opts.ClockOffsets)
			})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return loaded{}, ctxErr
			}
			if err != nil {
				appErr, ok := errors.AsAppError(err)
				if !ok {
					appErr = errors.Internal(err)
				}
				return loaded{err: appErr}, nil
			}
			return loaded{rec: rec}, nil
		})
	if err != nil {
		return nil, nil, err
	}

	var (
		recs     []transcript.Recording
		failures []Failure
	)
	for i, r := range results {
		if r.err != nil {
			failures = append(failures, Failure{Path: paths[i], Err: r.err})
			continue
		}
		recs = append(recs, r.rec)
	}
	return recs, failures, nil
}

// WriteRecording writes rec in the recording file format. Segments carry
// their resolved username.
func WriteRecording(path string, rec transcript.Recording) error {
	f := recordingFile{
		Username: rec.SourceID,
		Language: rec.Language,
		Segments: lo.Map(rec.Segments, func(s transcript.Segment, _ int) segmentFile {
			return segmentFile{
				Start: s.Start, End: s.End, Text: s.Text,
				Username: rec.SourceOf(s), Confidence: s.Confidence,
			}
		}),
	}
	if rec.ClockOffset != 0 {
		offset := rec.ClockOffset
		f.ClockOffset = &offset
	}
	return writeJSON(path, f)
}

// CleanedPath names the deduplicated copy of path: <stem><suffix>.json,
// in outDir when set, next to path otherwise.
func CleanedPath(path, outDir, suffix string) string {
	if suffix == "" {
		suffix = DefaultCleanSuffix
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if ext == "" {
		ext = ".json"
	}
	dir := filepath.Dir(path)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, stem+suffix+ext)
}

// sourceID resolves a recording's identity: the top-level username, the
// first segment username, then the file stem without its transcription suffix.
func sourceID(path string, f recordingFile) string {
	if id := strings.TrimSpace(f.Username); id != "" {
		return id
	}
	if s, ok := lo.Find(f.Segments, func(s segmentFile) bool { return strings.TrimSpace(s.Username) != "" }); ok {
		return strings.TrimSpace(s.Username)
	}
	return StemSourceID(path)
}

// StemSourceID derives a source id from a file name such as
// "Alice_transcription_fr.json" or "Alice_transcription_deduped.json".
func StemSourceID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.TrimSuffix(stem, DefaultCleanSuffix)
	if i := strings.Index(stem, "_transcription"); i > 0 {
		stem = stem[:i]
	}
	return stem
}
