//go:build !unix

package logging

import "os"

// lockFile is a no-op where flock(2) is unavailable; the writer's mutex
// still serialises writers within the process.
func lockFile(*os.File) (func(), error) {
	return func() {}, nil
}
