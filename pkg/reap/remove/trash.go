package remove

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// trashTimeout bounds each external trash command.
const trashTimeout = 30 * time.Second

// trashCommands lists, in order of preference, the commands that move
// path to the desktop trash on goos.
func trashCommands(goos, path string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{
			{"osascript", "-e", fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)},
		}
	case "linux":
		return [][]string{
			{"gio", "trash", path},
			{"trash-put", path},
		}
	}
	return nil
}

// MoveToTrash moves a single file to the desktop trash using the first
// available platform tool. If none is installed or all of them fail, the
// file is removed permanently instead.
func MoveToTrash(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	for _, argv := range trashCommands(runtime.GOOS, abs) {
		if runTrash(argv) == nil {
			return nil
		}
	}
	return fallbackDelete(abs)
}

func runTrash(argv []string) error {
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), trashTimeout)
	defer cancel()
	return exec.CommandContext(ctx, bin, argv[1:]...).Run()
}

// fallbackDelete permanently removes one file or empty directory.
func fallbackDelete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}
