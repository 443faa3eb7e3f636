package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaxSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", defaultMaxSize, false},
		{"10MB", 10 * 1000 * 1000, false},
		{"512KiB", 512 * 1024, false},
		{"1GiB", 1024 * 1024 * 1024, false},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMaxSize(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "ParseMaxSize(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ParseMaxSize(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseMaxSize(%q)", tt.input)
	}
}

func TestRotatingWriter_SizeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reap.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 100, MaxBackups: 2})
	require.NoError(t, err)
	defer w.Close()

	line := []byte(strings.Repeat("x", 60) + "\n")
	for i := 0; i < 6; i++ {
		_, err := w.Write(line)
		require.NoError(t, err)
		// Backup names carry millisecond timestamps.
		time.Sleep(5 * time.Millisecond)
	}

	backups := w.backups()
	assert.Len(t, backups, 2, "MaxBackups should bound rotated files")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(100))
}

func TestRotatingWriter_DailyRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reap.log")
	require.NoError(t, os.WriteFile(path, []byte("old day\n"), 0o644))

	yesterday := time.Now().Add(-36 * time.Hour)
	require.NoError(t, os.Chtimes(path, yesterday, yesterday))

	w, err := NewRotatingWriter(path, RotationConfig{Daily: true})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("new day\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new day\n", string(data))
	assert.Len(t, w.backups(), 1)
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "reap.log"), RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingWriter_PruneByAge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reap.log")

	old := filepath.Join(dir, "reap.2020-01-01-000000.000.log")
	require.NoError(t, os.WriteFile(old, []byte("ancient"), 0o644))
	ancient := time.Now().AddDate(0, 0, -90)
	require.NoError(t, os.Chtimes(old, ancient, ancient))

	w, err := NewRotatingWriter(path, RotationConfig{MaxAge: 30})
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "backup older than MaxAge should be pruned")
}
