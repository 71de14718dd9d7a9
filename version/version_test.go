package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetWithLinkerValues(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234def"
	BuildTime = "2026-10-17T10:30:00Z"

	info := Get()
	if !info.IsRelease {
		t.Error("expected release build")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	want := time.Date(2026, 10, 17, 10, 30, 0, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("expected build date %v, got %v", want, info.BuildDate)
	}
}

func TestGetDirtyVersionNotRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0-dirty"
	if Get().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestInvalidBuildTimeIgnored(t *testing.T) {
	defer saveAndRestore()()
	BuildTime = "yesterday"
	info := Get()
	if !info.BuildDate.IsZero() && info.BuildDate.Year() < 2000 {
		t.Errorf("unexpected build date %v", info.BuildDate)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GoVersion: "go1.26.0",
		BuildDate: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	}
	s := info.String()
	if !strings.HasPrefix(s, "sessionscribe 1.0.0 (") {
		t.Errorf("unexpected prefix in %q", s)
	}
	if !strings.Contains(s, "go1.26.0") || !strings.Contains(s, "built 2026-10-17T00:00:00Z") {
		t.Errorf("missing details in %q", s)
	}
	if got := (Info{Version: "dev"}).String(); got != "sessionscribe dev" {
		t.Errorf("unexpected bare string %q", got)
	}
}
