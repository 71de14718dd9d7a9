package sessionio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/transcript"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		explicit, path, want string
	}{
		{"", "", FormatMarkdown},
		{"", "-", FormatMarkdown},
		{"", "out/session.txt", FormatText},
		{"", "out/session.JSON", FormatJSON},
		{"", "out/session.html", FormatMarkdown},
		{"txt", "out/session.json", FormatText},
		{" MD ", "", FormatMarkdown},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.explicit, tt.path)
		require.NoError(t, err, "%q %q", tt.explicit, tt.path)
		assert.Equal(t, tt.want, got, "%q %q", tt.explicit, tt.path)
	}

	_, err := FormatFor("pdf", "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "format")
}

func TestFilter_ZeroKeepsEverything(t *testing.T) {
	var f Filter
	assert.True(t, f.IsZero())
	assert.NoError(t, f.Validate())
	assert.Equal(t, merged(), f.Apply(merged()))
}

func TestFilter_Users(t *testing.T) {
	out := Filter{Users: []string{"bob"}}.Apply(merged())

	require.Len(t, out.Segments, 2)
	assert.Equal(t, 2, out.Info.SegmentCount)
	assert.Equal(t, []string{"Bob"}, out.Info.Usernames)
	assert.Equal(t, 64.0, out.Info.TotalDuration)
	assert.Equal(t, []string{"en"}, out.Info.Languages)
}

func TestFilter_TimeRange(t *testing.T) {
	out := Filter{From: 1, To: 4.5}.Apply(merged())
	require.Len(t, out.Segments, 1)
	assert.Equal(t, "I dodge", out.Segments[0].Text)

	out = Filter{From: 1}.Apply(merged())
	assert.Len(t, out.Segments, 2)
}

func TestFilter_MinDurationAndChars(t *testing.T) {
	out := Filter{MinDuration: 3.5}.Apply(merged())
	require.Len(t, out.Segments, 1)
	assert.Equal(t, "and then I run", out.Segments[0].Text)

	out = Filter{MinChars: 10}.Apply(merged())
	require.Len(t, out.Segments, 2)
	assert.Equal(t, []string{"Alice", "Bob"}, out.Info.Usernames)
}

func TestFilter_DoesNotMutate(t *testing.T) {
	mt := merged()
	_ = Filter{Users: []string{"Alice"}}.Apply(mt)
	assert.Len(t, mt.Segments, 3)
	assert.Equal(t, []string{"Alice", "Bob"}, mt.Info.Usernames)
}

func TestFilter_Validate(t *testing.T) {
	tests := []struct {
		name  string
		f     Filter
		field string
	}{
		{"negative from", Filter{From: -1}, "from"},
		{"to before from", Filter{From: 10, To: 5}, "to"},
		{"negative duration", Filter{MinDuration: -0.5}, "min_duration"},
		{"negative chars", Filter{MinChars: -1}, "min_chars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRenderText(t *testing.T) {
	txt := RenderText(merged(), Metadata{})
	assert.Equal(t,
		"[00:00-00:03] Alice: I cast fireball\n"+
			"[00:01-00:04] Bob: I dodge\n"+
			"[00:04-01:05] Bob: and then I run\n", txt)

	txt = RenderText(merged(), Metadata{JoinConsecutive: true, NoTimestamps: true})
	assert.Equal(t, "Alice: I cast fireball\nBob: I dodge and then I run\n", txt)
}

func TestExport_JSONLoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bob.json")
	mt := Filter{Users: []string{"Bob"}}.Apply(merged())
	require.NoError(t, Export(path, FormatJSON, mt, Metadata{}))

	back, err := LoadMerged(path)
	require.NoError(t, err)
	assert.Len(t, back.Segments, 2)
	assert.Equal(t, []string{"Bob"}, back.Info.Usernames)
}

func TestRender_EmptyJSONSegmentsIsArray(t *testing.T) {
	data, err := Render(FormatJSON, transcript.MergedTranscript{}, Metadata{})
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, "[]", string(raw["segments"]))
}

func TestExport_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	err := Export(path, "pdf", merged(), Metadata{})
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
