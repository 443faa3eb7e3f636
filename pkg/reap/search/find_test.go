package search

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFind(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("find"); err != nil {
		t.Skip("find not available")
	}
}

func TestFind_Search(t *testing.T) {
	requireFind(t)

	root := makeTree(t, "diff_result.html", "x/y/diff_result.html", "x/keep.txt")
	require.NoError(t, os.Mkdir(filepath.Join(root, "diff_result.html.d"), 0o755))

	got, err := NewFind().Search(context.Background(), "diff_result.html", root)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "diff_result.html"),
		filepath.Join(root, "x/y/diff_result.html"),
	}
	assert.Equal(t, sorted(want), sorted(got))
}

func TestFind_NoMatches(t *testing.T) {
	requireFind(t)

	got, err := NewFind().Search(context.Background(), "diff_result.html", makeTree(t, "other"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_PartialPermissionErrors(t *testing.T) {
	requireFind(t)
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := makeTree(t, "open/diff_result.html", "locked/inner/diff_result.html")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got, err := NewFind().Search(context.Background(), "diff_result.html", root)
	require.NoError(t, err, "exit status 1 with output is accepted")
	assert.Equal(t, []string{filepath.Join(root, "open/diff_result.html")}, got)
}

func TestFind_MissingRoot(t *testing.T) {
	requireFind(t)

	_, err := NewFind().Search(context.Background(), "x", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrFacility)
}

func TestFind_MissingBinary(t *testing.T) {
	f := &Find{Command: "reap-no-such-find-binary"}
	_, err := f.Search(context.Background(), "x", t.TempDir())
	assert.ErrorIs(t, err, ErrFacility)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestEscapePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"diff_result.html", "diff_result.html"},
		{"*.tmp", `\*.tmp`},
		{"a?b", `a\?b`},
		{"[ab].log", `\[ab\].log`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, escapePattern(tt.in), tt.in)
	}
}

func TestFind_NameIsLiteral(t *testing.T) {
	requireFind(t)

	root := makeTree(t, "notes.tmp", "x/other.tmp", "x/*.tmp", "a?c", "abc")

	got, err := NewFind().Search(context.Background(), "*.tmp", root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "x/*.tmp")}, got)

	got, err = NewFind().Search(context.Background(), "a?c", root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a?c")}, got)
}
