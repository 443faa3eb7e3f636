package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/reap/pkg/reap/fileid"
)

// Walk searches with a parallel directory walk. Unreadable directories are
// skipped silently, like find with stderr discarded.
type Walk struct {
	workers int
}

// NewWalk returns a walk backend using the given worker count
// (0 = fastwalk default).
func NewWalk(workers int) *Walk {
	return &Walk{workers: workers}
}

// Name implements BroadSearch.
func (w *Walk) Name() string { return BackendWalk }

// Search implements BroadSearch.
func (w *Walk) Search(ctx context.Context, name, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, facilityError(BackendWalk, err)
	}
	if !info.IsDir() {
		return nil, facilityError(BackendWalk, fmt.Errorf("%s is not a directory", root))
	}

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	var (
		mu    sync.Mutex
		found []string
	)
	visited := fileid.NewSet()

	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}
		if err != nil {
			// Permission errors and vanished entries are not facility failures.
			if d != nil && d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if !visited.Visit(path) {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && d.Name() == name {
			mu.Lock()
			found = append(found, path)
			mu.Unlock()
		}
		return nil
	})

	if err := ctx.Err(); err != nil {
		return found, facilityError(BackendWalk, err)
	}
	if walkErr != nil && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		return found, facilityError(BackendWalk, walkErr)
	}
	return found, nil
}
