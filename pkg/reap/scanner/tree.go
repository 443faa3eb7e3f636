// Package scanner implements the two proactive discovery paths: a recursive
// scan of one configured directory tree, and a global scan that asks a
// broad search backend for every target name.
//
// Neither scan ever returns an error. Failures are logged, counted in the
// returned types.ScanCounters, and processing moves on.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/fileid"
	"github.com/jamesainslie/reap/pkg/reap/match"
	"github.com/jamesainslie/reap/pkg/reap/remove"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

// ScanTree deletes every regular file below root whose base name is a
// target. Symlinks are not followed and each physical directory is visited
// once, so the walk terminates even over bind-mount loops. Unreadable
// directories are skipped; their siblings are still scanned.
//
// A canceled ctx stops the walk early; callers that must let a scan run to
// completion pass context.WithoutCancel.
func ScanTree(ctx context.Context, root string, snap *config.Snapshot, opts Options) types.ScanCounters {
	log := logger()
	start := time.Now()
	log.Info("scan started", "root", root)

	remover := opts.Remover
	if remover == nil {
		remover = remove.New(snap.DeleteMode())
	}
	matcher := match.FromSnapshot(snap)
	visited := fileid.NewSet()

	var (
		// mu serialises deletions and counter updates across walk workers.
		mu       sync.Mutex
		counters types.ScanCounters
		skipped  int
	)

	conf := fastwalk.Config{
		Follow:     false, // Don't follow symlinks.
		NumWorkers: opts.Workers,
	}

	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}

		if err != nil {
			if path == root && d == nil {
				return err
			}
			log.Warn("directory unreadable, skipped", "path", path, "error", err)
			mu.Lock()
			skipped++
			mu.Unlock()
			if d != nil && d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if !visited.Visit(path) {
				log.Debug("directory already visited, skipped", "path", path)
				return fastwalk.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !matcher.Match(d.Name()) {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		opts.record(&counters, remover.Remove(types.MatchEvent{Path: path, Trigger: types.TriggerInitialScan}))
		return nil
	})

	switch {
	case walkErr == nil, errors.Is(walkErr, fastwalk.ErrSkipFiles):
	case errors.Is(walkErr, fs.ErrNotExist), errors.Is(walkErr, fs.ErrPermission):
		log.Warn("scan root unreadable", "root", root, "error", walkErr)
	default:
		log.Error("scan aborted", "root", root, "error", walkErr)
	}
	if ctx.Err() != nil {
		log.Warn("scan interrupted", "root", root)
	}

	logSummary(log, "scan complete", counters,
		"root", root,
		"dirs", visited.Len(),
		"unreadable", skipped,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return counters
}

// ScanTrees runs ScanTree over every configured directory in order and
// returns the combined counters.
func ScanTrees(ctx context.Context, snap *config.Snapshot, opts Options) types.ScanCounters {
	var total types.ScanCounters
	for _, dir := range snap.Dirs() {
		if _, err := os.Stat(dir); err != nil {
			logger().Warn("watch directory unavailable, skipped", "root", dir, "error", err)
			continue
		}
		total.Add(ScanTree(ctx, dir, snap, opts))
	}
	if total.Deleted == 0 {
		logger().Info("initial scan found no target files")
	} else {
		logger().Info("initial scan deleted files", "deleted", total.Deleted)
	}
	return total
}
