package remove

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveToTrash_NonexistentFile(t *testing.T) {
	err := MoveToTrash(filepath.Join(t.TempDir(), "nonexistent.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFallbackDelete(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "fallback_test.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("fallback test"), 0o644))

	require.NoError(t, fallbackDelete(tmpFile))

	_, err := os.Stat(tmpFile)
	assert.True(t, os.IsNotExist(err))
}

func TestFallbackDelete_NonEmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keep")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("content"), 0o644))

	assert.Error(t, fallbackDelete(dir), "fallback must never remove trees")
	assert.DirExists(t, dir)
}

func TestTrashCommands(t *testing.T) {
	linux := trashCommands("linux", "/tmp/x")
	require.Len(t, linux, 2)
	assert.Equal(t, []string{"gio", "trash", "/tmp/x"}, linux[0])
	assert.Equal(t, []string{"trash-put", "/tmp/x"}, linux[1])

	darwin := trashCommands("darwin", "/tmp/x")
	require.Len(t, darwin, 1)
	assert.Equal(t, "osascript", darwin[0][0])
	assert.Contains(t, darwin[0][2], `POSIX file "/tmp/x"`)

	assert.Empty(t, trashCommands("windows", `C:\x`))
}

func TestRunTrash_MissingTool(t *testing.T) {
	assert.Error(t, runTrash([]string{"reap-no-such-trash-tool", "/tmp/x"}))
}
