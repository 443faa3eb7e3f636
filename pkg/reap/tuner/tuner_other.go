//go:build !linux && !darwin

package tuner

import (
	"runtime"
)

// Detect reports CPU cores only; the watch limit is unknown on this
// platform.
func Detect() (SystemResources, error) {
	return SystemResources{
		CPUCores: runtime.NumCPU(),
	}, nil
}
