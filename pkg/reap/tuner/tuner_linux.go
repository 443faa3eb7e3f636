//go:build linux

package tuner

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// maxUserWatchesPath holds the per-user inotify watch limit.
const maxUserWatchesPath = "/proc/sys/fs/inotify/max_user_watches"

// Detect detects CPU cores and the inotify watch limit.
// CPUCores is always set, even when the watch limit cannot be read.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	limit, err := readWatchLimit(maxUserWatchesPath)
	if err != nil {
		return resources, fmt.Errorf("failed to read inotify watch limit: %w", err)
	}
	resources.WatchLimit = limit

	return resources, nil
}

func readWatchLimit(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return n, nil
}
