package search

import "context"

// BroadSearch finds files by exact base name below a root.
type BroadSearch interface {
	// Search returns the absolute paths of regular files named name
	// below root. Paths may no longer exist by the time the caller acts
	// on them.
	Search(ctx context.Context, name, root string) ([]string, error)

	// Name returns the backend name for logging.
	Name() string
}
