package sessionio

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/transcript"
)

// DefaultConsecutiveGap is the largest pause, in seconds, across which
// consecutive lines of one speaker are joined in the markdown export.
const DefaultConsecutiveGap = 2.0

// Metadata decorates a markdown export.
type Metadata struct {
	Title  string
	Source string
	// Generated is printed verbatim when set.
	Generated string
	// JoinConsecutive joins a speaker's consecutive lines separated by at
	// most DefaultConsecutiveGap seconds.
	JoinConsecutive bool
	// NoTimestamps omits the [mm:ss-mm:ss] prefix.
	NoTimestamps bool
}

// RenderMarkdown renders a merged transcript as a readable session document.
func RenderMarkdown(mt transcript.MergedTranscript, meta Metadata) string {
	segs := lo.Filter(mt.Segments, func(s transcript.Segment, _ int) bool { return s.HasText() })
	if meta.JoinConsecutive {
		segs = JoinConsecutive(segs, DefaultConsecutiveGap)
	}

	var b strings.Builder
	title := meta.Title
	if title == "" {
		title = "RPG Session Transcription"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Statistics\n")
	fmt.Fprintf(&b, "- **Segments**: %d\n", len(segs))
	if len(mt.Info.Usernames) > 0 {
		fmt.Fprintf(&b, "- **Participants**: %s\n", strings.Join(mt.Info.Usernames, ", "))
	}
	if len(mt.Info.Languages) > 0 {
		fmt.Fprintf(&b, "- **Languages**: %s\n", strings.Join(mt.Info.Languages, ", "))
	}
	if mt.Info.TotalDuration > 0 {
		fmt.Fprintf(&b, "- **Duration**: %s\n", formatTimestamp(mt.Info.TotalDuration))
	}
	if !mt.Info.MergedAt.IsZero() {
		fmt.Fprintf(&b, "- **Merged at**: %s\n", mt.Info.MergedAt.UTC().Format(time.RFC3339))
	}
	if meta.Source != "" {
		fmt.Fprintf(&b, "- **Source**: `%s`\n", meta.Source)
	}
	if meta.Generated != "" {
		fmt.Fprintf(&b, "- **Generated**: %s\n", meta.Generated)
	}

	b.WriteString("\n## Content\n\n")
	for _, s := range segs {
		b.WriteString(segmentLine(s, meta))
		b.WriteString("\n\n")
	}
	return b.String()
}

// segmentLine prints "[mm:ss-mm:ss] speaker: text".
func segmentLine(s transcript.Segment, meta Metadata) string {
	var b strings.Builder
	if !meta.NoTimestamps {
		fmt.Fprintf(&b, "[%s-%s] ", formatTimestamp(s.Start), formatTimestamp(s.End))
	}
	if s.SourceID != "" {
		b.WriteString(s.SourceID + ": ")
	}
	b.WriteString(strings.TrimSpace(s.Text))
	return b.String()
}

// WriteMarkdown renders mt and writes it to path.
func WriteMarkdown(path string, mt transcript.MergedTranscript, meta Metadata) error {
	return writeFile(path, []byte(RenderMarkdown(mt, meta)))
}

// JoinConsecutive joins runs of one speaker's segments whose pause is at
// most gap seconds. segs is not modified.
func JoinConsecutive(segs []transcript.Segment, gap float64) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segs))
	for _, s := range segs {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.SourceID == s.SourceID && s.Start-last.End <= gap {
				last.Text = strings.TrimSpace(last.Text) + " " + strings.TrimSpace(s.Text)
				last.End = max(last.End, s.End)
				last.Confidence = nil
				continue
			}
		}
		out = append(out, s.Copy())
	}
	return out
}

// formatTimestamp prints seconds as mm:ss, or hh:mm:ss past the first hour.
func formatTimestamp(sec float64) string {
	if sec < 0 {
		return "-" + formatTimestamp(-sec)
	}
	d := time.Duration(sec*1000) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
