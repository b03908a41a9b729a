package version

import (
	"strings"
	"testing"
)

func withVersion(t *testing.T, v, commit, built string) {
	t.Helper()
	oldV, oldC, oldB := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldB })
}

func TestGet(t *testing.T) {
	withVersion(t, "1.4.0", "abcdef0123456", "2026-03-01T10:00:00Z")

	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("unexpected version %q", info.Version)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected commit shortened to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildTime.Year() != 2026 {
		t.Errorf("expected ldflags build time, got %v", info.BuildTime)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
		rel  bool
	}{
		{Info{Version: "dev"}, "dev", false},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234", true},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty", false},
	}
	for _, tc := range tests {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
		if tc.info.IsRelease() != tc.rel {
			t.Errorf("%s: IsRelease() = %v", tc.want, !tc.rel)
		}
	}
}

func TestUserAgent(t *testing.T) {
	withVersion(t, "2.0.0", "", "")
	if ua := UserAgent("apiprobe"); !strings.HasPrefix(ua, "apiprobe/2.0.0") || !strings.Contains(ua, "errkit") {
		t.Errorf("unexpected user agent %q", ua)
	}
}
