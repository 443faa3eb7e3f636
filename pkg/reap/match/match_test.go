package match

import (
	"testing"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

func snapshot(t *testing.T, targets ...string) *config.Snapshot {
	t.Helper()
	b := config.NewBuilder()
	if err := b.SetTargets(targets); err != nil {
		t.Fatalf("SetTargets() error = %v", err)
	}
	if _, err := b.SetDirs([]string{t.TempDir()}); err != nil {
		t.Fatalf("SetDirs() error = %v", err)
	}
	snap, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return snap
}

func TestMatches(t *testing.T) {
	snap := snapshot(t, "diff_result.html", "secret.tmp")

	tests := []struct {
		name string
		want bool
	}{
		{"diff_result.html", true},
		{"secret.tmp", true},
		{"Diff_Result.html", false},
		{"diff_result.html.bak", false},
		{"xdiff_result.html", false},
		{"", false},
	}

	m := FromSnapshot(snap)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.name, snap); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if got := m.Match(tt.name); got != tt.want {
				t.Errorf("Matcher.Match(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMatchPath(t *testing.T) {
	m := New([]string{"secret.tmp"})

	if !m.MatchPath("/tmp/w/a/secret.tmp") {
		t.Error("MatchPath() should match on base name")
	}
	if m.MatchPath("/tmp/secret.tmp/other") {
		t.Error("MatchPath() must not match directory components")
	}
}
