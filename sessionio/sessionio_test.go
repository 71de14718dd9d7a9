package sessionio

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/sessionscribe/dedup"
	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/resilience"
	"github.com/kbukum/sessionscribe/transcript"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const aliceJSON = `{
  "language": "fr",
  "segments": [
    {"start": 0, "end": 2, "text": "we open the door", "username": "Alice", "confidence": 0.9},
    {"start": 2.1, "end": 4, "text": "we open the door", "username": "Alice"}
  ]
}`

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bob_transcription.json", `{}`)
	writeFixture(t, dir, "alice_transcription_fr.json", `{}`)
	writeFixture(t, dir, "alice_transcription_fr_deduped.json", `{}`)
	writeFixture(t, dir, DefaultMergedFilename, `{}`)
	writeFixture(t, dir, "notes.txt", ``)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "x_transcription.json"), 0o755))

	paths, err := Discover(dir, "", DefaultMergedFilename, "*"+DefaultCleanSuffix+".json")
	require.NoError(t, err)
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	assert.Equal(t, []string{"alice_transcription_fr.json", "bob_transcription.json"}, names)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeIO, errors.CodeOf(err))

	_, err = Discover(t.TempDir(), "[")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}

func TestLoadRecording(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "alice_transcription_fr.json", aliceJSON)
	rec, err := LoadRecording(path)
	require.NoError(t, err)

	assert.Equal(t, "Alice", rec.SourceID)
	assert.Equal(t, "fr", rec.Language)
	assert.Equal(t, path, rec.Path)
	require.Len(t, rec.Segments, 2)
	require.NotNil(t, rec.Segments[0].Confidence)
	assert.Equal(t, 0.9, *rec.Segments[0].Confidence)
	assert.Nil(t, rec.Segments[1].Confidence)
}

func TestLoadRecording_SourceIDFromStem(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "Gandalf_transcription_en_deduped.json",
		`{"language":"en","segments":[{"start":0,"end":1,"text":"you shall not pass"}]}`)
	rec, err := LoadRecording(path)
	require.NoError(t, err)
	assert.Equal(t, "Gandalf", rec.SourceID)
}

func TestLoadRecording_TopLevelUsernameWins(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "x_transcription.json",
		`{"username":"GM","language":"en","clock_offset":1.5,"segments":[{"start":0,"end":1,"text":"roll","username":"Other"}]}`)
	rec, err := LoadRecording(path)
	require.NoError(t, err)
	assert.Equal(t, "GM", rec.SourceID)
	assert.Equal(t, 1.5, rec.ClockOffset)
	assert.Equal(t, "Other", rec.Segments[0].SourceID)
}

func TestLoadRecording_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"missing segments", `{"language":"en"}`, "segments"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFixture(t, dir, "bad_transcription.json", tc.content)
			_, err := LoadRecording(path)
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidInput, appErr.Code)
			assert.Equal(t, path, appErr.Details["path"])
			assert.Contains(t, appErr.Message, tc.field)
		})
	}
}

func TestLoadRecording_BadSegmentKeepsRecording(t *testing.T) {
	dir := t.TempDir()

	negative := writeFixture(t, dir, "alice_transcription.json",
		`{"language":"en","segments":[{"start":-0.04,"end":1,"text":"hello"},{"start":2,"end":3,"text":"we open the door"}]}`)
	rec, err := LoadRecording(negative)
	require.NoError(t, err)
	require.Len(t, rec.Segments, 2)

	out, report, err := dedup.Deduplicate(rec, dedup.DefaultParams())
	require.NoError(t, err)
	require.Len(t, out.Segments, 1)
	assert.Equal(t, "we open the door", out.Segments[0].Text)
	assert.Equal(t, 1, report.Dropped)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, errors.ErrCodeInvalidSegment, report.Warnings[0].Code)

	overconfident := writeFixture(t, dir, "bob_transcription.json",
		`{"language":"en","segments":[{"start":0,"end":1,"text":"roll","confidence":0.8},{"start":5,"end":6,"text":"charge","confidence":1.02}]}`)
	rec, err = LoadRecording(overconfident)
	require.NoError(t, err)
	require.Len(t, rec.Segments, 2)

	out, report, err = dedup.Deduplicate(rec, dedup.DefaultParams())
	require.NoError(t, err)
	require.Len(t, out.Segments, 2)
	assert.Nil(t, out.Segments[1].Confidence)
	assert.Equal(t, 0, report.Dropped)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, errors.ErrCodeInvalidConfidence, report.Warnings[0].Code)
	assert.Equal(t, 1, report.Warnings[0].Index)
}

func TestLoadRecording_MalformedJSON(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "bad_transcription.json", `{"segments": [`)
	_, err := LoadRecording(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}

func TestLoadAll_OrderFailuresAndOffsets(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFixture(t, dir, "c_transcription.json", `{"language":"en","segments":[{"start":0,"end":1,"text":"c"}]}`),
		writeFixture(t, dir, "bad_transcription.json", `not json`),
		writeFixture(t, dir, "a_transcription.json", `{"language":"en","clock_offset":3,"segments":[{"start":0,"end":1,"text":"a"}]}`),
		writeFixture(t, dir, "b_transcription.json", `{"language":"de","segments":[]}`),
	}
	offsets := map[string]float64{"C": 2.5, "a": 9}

	recs, failures, err := LoadAll(context.Background(), paths, LoadOptions{Workers: 3, ClockOffsets: offsets})
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, "c", recs[0].SourceID)
	assert.Equal(t, 2.5, recs[0].ClockOffset)
	assert.Equal(t, "a", recs[1].SourceID)
	assert.Equal(t, 3.0, recs[1].ClockOffset, "file value wins over configured offset")
	assert.Equal(t, "b", recs[2].SourceID)
	assert.Empty(t, recs[2].Segments)

	require.Len(t, failures, 1)
	assert.Equal(t, paths[1], failures[0].Path)
}

func TestLoadOptions_Workers(t *testing.T) {
	assert.Equal(t, min(runtime.NumCPU(), 64), LoadOptions{}.workers(64))
	assert.Equal(t, 1, LoadOptions{}.workers(0))
	assert.Equal(t, 3, LoadOptions{Workers: 3}.workers(10))
	assert.Equal(t, 2, LoadOptions{Workers: 8}.workers(2))
}

func TestLoadAll_MissingFileNotRetried(t *testing.T) {
	retries := 0
	cfg := resilience.DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.OnRetry = func(int, error, time.Duration) { retries++ }

	missing := filepath.Join(t.TempDir(), "gone_transcription.json")
	recs, failures, err := LoadAll(context.Background(), []string{missing}, LoadOptions{Retry: &cfg})
	require.NoError(t, err)
	assert.Empty(t, recs)
	require.Len(t, failures, 1)
	assert.Equal(t, errors.ErrCodeIO, failures[0].Err.Code)
	assert.Zero(t, retries)
}

func TestWriteRecording_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	conf := 0.7
	rec := transcript.Recording{
		SourceID: "Alice", Language: "fr", ClockOffset: 1.25,
		Segments: []transcript.Segment{{Start: 0, End: 4, Text: "we open the door", Confidence: &conf}},
	}
	path := CleanedPath(filepath.Join(dir, "alice_transcription.json"), "", "")
	require.NoError(t, WriteRecording(path, rec))

	got, err := LoadRecording(path)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.SourceID)
	assert.Equal(t, 1.25, got.ClockOffset)
	assert.Equal(t, "Alice", got.Segments[0].SourceID, "username is written per segment")
	assert.Equal(t, 0.7, *got.Segments[0].Confidence)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCleanedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("in", "bob_transcription_deduped.json"),
		CleanedPath(filepath.Join("in", "bob_transcription.json"), "", ""))
	assert.Equal(t, filepath.Join("out", "bob_transcription_clean.json"),
		CleanedPath(filepath.Join("in", "bob_transcription.json"), "out", "_clean"))
	assert.Equal(t, filepath.Join("in", "bob_deduped.json"), CleanedPath(filepath.Join("in", "bob"), "", ""))
}

func TestStemSourceID(t *testing.T) {
	tests := map[string]string{
		"Alice_transcription.json":            "Alice",
		"dir/Bob_transcription_fr.json":       "Bob",
		"Carol_transcription_en_deduped.json": "Carol",
		"plain.json":                          "plain",
		"_transcription.json":                 "_transcription",
	}
	for in, want := range tests {
		assert.Equal(t, want, StemSourceID(in), in)
	}
}

func merged() transcript.MergedTranscript {
	return transcript.MergedTranscript{
		Segments: []transcript.Segment{
			{Start: 0, End: 3, Text: "I cast fireball", SourceID: "Alice"},
			{Start: 1, End: 4, Text: "I dodge", SourceID: "Bob"},
			{Start: 4.5, End: 65, Text: "and then I run", SourceID: "Bob"},
		},
		Info: transcript.MergedInfo{
			Usernames:     []string{"Alice", "Bob"},
			Languages:     []string{"en"},
			TotalDuration: 65,
			MergedAt:      time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC),
			SegmentCount:  3,
		},
	}
}

func TestWriteMerged_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultMergedFilename)
	mt := merged()
	require.NoError(t, WriteMerged(path, mt))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"merged_info"`)
	assert.Contains(t, string(raw), `"username": "Alice"`)
	assert.Contains(t, string(raw), `"merged_at": "2026-10-17T10:00:00Z"`)

	got, err := LoadMerged(path)
	require.NoError(t, err)
	assert.Equal(t, mt.Segments, got.Segments)
	assert.Equal(t, mt.Info.Usernames, got.Info.Usernames)
	assert.True(t, mt.Info.MergedAt.Equal(got.Info.MergedAt))
}

func TestWriteMerged_EmptySegmentsIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, WriteMerged(path, transcript.MergedTranscript{}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"segments": []`)
}

func TestLoadMerged_BadConfidence(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "m.json",
		`{"segments":[{"start":0,"end":1,"text":"a","username":"A","confidence":2}],"merged_info":{}}`)
	_, err := LoadMerged(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segments[0].confidence")
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(merged(), Metadata{Source: "merged_transcription.json"})

	assert.True(t, strings.HasPrefix(md, "# RPG Session Transcription\n"))
	assert.Contains(t, md, "- **Segments**: 3\n")
	assert.Contains(t, md, "- **Participants**: Alice, Bob\n")
	assert.Contains(t, md, "- **Duration**: 01:05\n")
	assert.Contains(t, md, "- **Merged at**: 2026-10-17T10:00:00Z\n")
	assert.Contains(t, md, "[00:00-00:03] Alice: I cast fireball\n")
	assert.Contains(t, md, "[00:04-01:05] Bob: and then I run\n")
}

func TestRenderMarkdown_JoinConsecutive(t *testing.T) {
	md := RenderMarkdown(merged(), Metadata{Title: "Session 12", JoinConsecutive: true, NoTimestamps: true})
	assert.True(t, strings.HasPrefix(md, "# Session 12\n"))
	assert.Contains(t, md, "- **Segments**: 2\n")
	assert.Contains(t, md, "Bob: I dodge and then I run\n")
	assert.NotContains(t, md, "[00:")
}

func TestJoinConsecutive_DoesNotMutate(t *testing.T) {
	segs := merged().Segments
	out := JoinConsecutive(segs, DefaultConsecutiveGap)
	require.Len(t, out, 2)
	assert.Equal(t, 65.0, out[1].End)
	assert.Equal(t, "I dodge", segs[1].Text)
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.md")
	require.NoError(t, WriteMarkdown(path, merged(), Metadata{}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Alice: I cast fireball")
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00", formatTimestamp(0))
	assert.Equal(t, "01:05", formatTimestamp(65.4))
	assert.Equal(t, "01:01:01", formatTimestamp(3661))
	assert.Equal(t, "-00:02", formatTimestamp(-2))
}
