package tuner

// Limits for the calculated configuration.
const (
	// minWalkWorkers is the floor for fastwalk workers. Directory
	// traversal is metadata-bound and benefits from parallelism even on
	// small machines.
	minWalkWorkers = 4

	// maxWalkWorkers caps walk workers to avoid contention on the
	// visited-directory set.
	maxWalkWorkers = 32

	// eventsPerCore sizes the event channel relative to CPU count.
	eventsPerCore = 256

	// DefaultEventBuffer is the minimum event channel capacity.
	DefaultEventBuffer = 1024

	// maxEventBuffer bounds the event channel.
	maxEventBuffer = 16384
)

// OptimalConfig contains tuned settings for the detected resources.
type OptimalConfig struct {
	// WalkWorkers is the fastwalk worker count for tree scans and the
	// walk search backend.
	WalkWorkers int

	// EventBuffer is the capacity of the watcher's event channel.
	EventBuffer int

	// WatchLimit is passed through from detection; the watcher warns
	// when registrations exceed it.
	WatchLimit int
}

// Calculate returns the configuration for the given resources.
//
//   - WalkWorkers: NumCPU clamped to [4, 32]
//   - EventBuffer: NumCPU * 256 clamped to [1024, 16384]
func Calculate(resources SystemResources) OptimalConfig {
	walkWorkers := max(resources.CPUCores, minWalkWorkers)
	walkWorkers = min(walkWorkers, maxWalkWorkers)

	buffer := resources.CPUCores * eventsPerCore
	buffer = max(buffer, DefaultEventBuffer)
	buffer = min(buffer, maxEventBuffer)

	return OptimalConfig{
		WalkWorkers: walkWorkers,
		EventBuffer: buffer,
		WatchLimit:  max(resources.WatchLimit, 0),
	}
}

// CalculateWithOverrides applies a user worker override to Calculate's
// result. Values <= 0 keep the calculated count; larger ones are capped.
func CalculateWithOverrides(resources SystemResources, workerOverride int) OptimalConfig {
	config := Calculate(resources)

	if workerOverride > 0 {
		config.WalkWorkers = min(workerOverride, maxWalkWorkers)
	}

	return config
}

// Auto detects resources and calculates the configuration. Detection
// failures degrade to CPU-only tuning.
func Auto() OptimalConfig {
	resources, _ := Detect()
	return Calculate(resources)
}
