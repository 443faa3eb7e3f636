// Package tuner detects the resources that bound reap's work: CPU cores for
// the parallel tree walk and the platform's watch limit for the event
// watcher.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// WatchLimit is the number of directory watches the platform allows
	// this user. On Linux this is fs.inotify.max_user_watches, on darwin
	// the open file soft limit (kqueue holds a descriptor per watch).
	// Zero means unknown.
	WatchLimit int
}
