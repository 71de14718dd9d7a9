package sessionio

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/transcript"
	"github.com/kbukum/sessionscribe/validation"
)

// Export formats.
const (
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// ExportJSONSuffix replaces the extension of a merged file exported as
// JSON, so the export neither overwrites its input nor matches it.
const ExportJSONSuffix = "_export.json"

// Formats lists the supported export formats.
var Formats = []string{FormatMarkdown, FormatText, FormatJSON}

// FormatFor picks the export format for an output path: explicit wins,
// then the path extension, then markdown.
func FormatFor(explicit, path string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(explicit))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !lo.Contains(Formats, f) {
			f = FormatMarkdown
		}
	}
	if appErr := validation.New().OneOf("format", f, Formats).Validate(); appErr != nil {
		return "", appErr
	}
	return f, nil
}

// Filter narrows a merged transcript before export. The zero value keeps
// everything.
type Filter struct {
	// Users keeps only these source ids, case-insensitively.
	Users []string
	// From keeps segments starting at or after this session time.
	From float64
	// To keeps segments starting before this session time; <= 0 is unbounded.
	To float64
	// MinDuration drops segments shorter than this many seconds.
	MinDuration float64
	// MinChars drops segments whose trimmed text is shorter than this.
	MinChars int
}

// Validate rejects negative bounds and an empty time range.
func (f Filter) Validate() error {
	v := validation.New().
		NonNegative("from", f.From).
		NonNegative("to", f.To).
		NonNegative("min_duration", f.MinDuration).
		Min("min_chars", f.MinChars, 0).
		Custom(f.To <= 0 || f.To > f.From, "to", "must be after from")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// IsZero reports whether f keeps every segment.
func (f Filter) IsZero() bool {
	return len(f.Users) == 0 && f.From <= 0 && f.To <= 0 && f.MinDuration <= 0 && f.MinChars <= 0
}

// Keep reports whether s passes every criterion of f.
func (f Filter) Keep(s transcript.Segment) bool {
	if len(f.Users) > 0 && !lo.SomeBy(f.Users, func(u string) bool { return strings.EqualFold(u, s.SourceID) }) {
		return false
	}
	if s.Start < f.From || (f.To > 0 && s.Start >= f.To) {
		return false
	}
	if s.Duration() < f.MinDuration {
		return false
	}
	return len([]rune(strings.TrimSpace(s.Text))) >= f.MinChars
}

// Apply returns mt restricted to the segments f keeps, with the segment
// count, participants and duration recomputed. mt is not modified.
func (f Filter) Apply(mt transcript.MergedTranscript) transcript.MergedTranscript {
	if f.IsZero() {
		return mt
	}
	segs := lo.Filter(mt.Segments, func(s transcript.Segment, _ int) bool { return f.Keep(s) })
	info := mt.Info
	info.SegmentCount = len(segs)
	info.TotalDuration = transcript.TotalDuration(segs)
	info.Usernames = lo.Filter(info.Usernames, func(u string, _ int) bool {
		return lo.ContainsBy(segs, func(s transcript.Segment) bool { return s.SourceID == u })
	})
	return transcript.MergedTranscript{Segments: segs, Info: info}
}

// RenderText renders one line per spoken segment, without headings.
func RenderText(mt transcript.MergedTranscript, meta Metadata) string {
	segs := lo.Filter(mt.Segments, func(s transcript.Segment, _ int) bool { return s.HasText() })
	if meta.JoinConsecutive {
		segs = JoinConsecutive(segs, DefaultConsecutiveGap)
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(segmentLine(s, meta))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders mt in format.
func Render(format string, mt transcript.MergedTranscript, meta Metadata) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(RenderMarkdown(mt, meta)), nil
	case FormatText:
		return []byte(RenderText(mt, meta)), nil
	case FormatJSON:
		if mt.Segments == nil {
			mt.Segments = []transcript.Segment{}
		}
		data, err := json.MarshalIndent(mt, "", "  ")
		if err != nil {
			return nil, errors.Internal(err)
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.InvalidInput("format", fmt.Sprintf("unsupported export format %q", format))
	}
}

// Export renders mt in format and writes it to path.
func Export(path, format string, mt transcript.MergedTranscript, meta Metadata) error {
	data, err := Render(format, mt, meta)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}
