//go:build darwin

package tuner

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect detects CPU cores and the open file soft limit, which bounds
// kqueue watches on darwin.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return resources, fmt.Errorf("getrlimit RLIMIT_NOFILE: %w", err)
	}

	limit := rlim.Cur
	if limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	resources.WatchLimit = int(limit)

	return resources, nil
}
