package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

// newFlagCommand returns a command carrying the override flags, parsed
// from args.
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addOverrideFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func newBuilder(t *testing.T) (*config.Builder, string) {
	t.Helper()
	dir := t.TempDir()
	b := config.NewBuilder()
	_, err := b.SetDirs([]string{dir})
	require.NoError(t, err)
	return b, dir
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{" , ,a,,", []string{"a"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCommaSeparated(tt.input), "input %q", tt.input)
	}
}

func TestApplyOverrides_None(t *testing.T) {
	b, dir := newBuilder(t)
	dropped, errs := applyOverrides(newFlagCommand(t), b)

	assert.Empty(t, dropped)
	assert.Empty(t, errs)
	assert.Equal(t, []string{dir}, b.Dirs())
	assert.Equal(t, config.DefaultTargets, b.Targets())
}

func TestApplyOverrides_Valid(t *testing.T) {
	b, _ := newBuilder(t)
	other := t.TempDir()

	cmd := newFlagCommand(t,
		"--files", "a.log,b.tmp",
		"--dirs", other,
		"--interval", "600",
		"--search-backend", "find",
		"--delete-mode", "trash")
	dropped, errs := applyOverrides(cmd, b)

	assert.Empty(t, dropped)
	assert.Empty(t, errs)
	assert.Equal(t, []string{"a.log", "b.tmp"}, b.Targets())
	assert.Equal(t, []string{other}, b.Dirs())
	assert.Equal(t, 600, b.Interval())

	snap, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "find", snap.Search().Backend)
	assert.Equal(t, "trash", snap.DeleteMode())
}

func TestApplyOverrides_PartialDirs(t *testing.T) {
	b, dir := newBuilder(t)
	missing := filepath.Join(dir, "nope")

	dropped, errs := applyOverrides(newFlagCommand(t, "--dirs", dir+","+missing), b)

	assert.Empty(t, errs)
	assert.Equal(t, []string{missing}, dropped)
	assert.Equal(t, []string{dir}, b.Dirs())
}

func TestApplyOverrides_RejectedKeepPrevious(t *testing.T) {
	b, dir := newBuilder(t)

	cmd := newFlagCommand(t,
		"--dirs", filepath.Join(dir, "nope"),
		"--interval", "soon",
		"--search-backend", "locate",
		"--delete-mode", "shred")
	_, errs := applyOverrides(cmd, b)

	require.Len(t, errs, 4)
	assert.ErrorIs(t, errs[0], config.ErrNoWatchDirs)
	assert.ErrorIs(t, errs[1], config.ErrInvalidInterval)
	assert.ErrorIs(t, errs[2], config.ErrInvalidSearchBackend)
	assert.ErrorIs(t, errs[3], config.ErrInvalidDeleteMode)

	assert.Equal(t, []string{dir}, b.Dirs())
	assert.Equal(t, config.DefaultScanInterval, b.Interval())
}

func TestApplyOverrides_NonPositiveInterval(t *testing.T) {
	for _, v := range []string{"0", "-10"} {
		b, _ := newBuilder(t)
		_, errs := applyOverrides(newFlagCommand(t, "--interval", v), b)
		require.Len(t, errs, 1, "interval %s", v)
		assert.ErrorIs(t, errs[0], config.ErrInvalidInterval)
		assert.Equal(t, config.DefaultScanInterval, b.Interval())
	}
}

func TestTuning_WorkersOverride(t *testing.T) {
	cmd := newFlagCommand(t, "--workers", "3")
	assert.Equal(t, 3, tuning(cmd).WalkWorkers)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	runVersion(versionCmd, nil)

	assert.Contains(t, out.String(), "reap dev")
	assert.Contains(t, out.String(), "os/arch:")
}
