package scanner

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/logging"
	"github.com/jamesainslie/reap/pkg/reap/remove"
	"github.com/jamesainslie/reap/pkg/reap/search"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

// GlobalScan asks the broad search backend for each target name, in
// configured order, below the snapshot's search root and deletes every
// returned path that still exists and whose base name is exactly that
// target. Backends that treat the name as a pattern cannot widen the
// deletion set.
//
// A backend failure ends the cycle: it is logged once, the remaining
// names are not searched, and the counters gathered so far are returned.
// The next scheduled cycle starts afresh.
func GlobalScan(ctx context.Context, snap *config.Snapshot, opts Options) types.ScanCounters {
	log := logger()
	start := time.Now()

	remover := opts.Remover
	if remover == nil {
		remover = remove.New(snap.DeleteMode())
	}

	backend := opts.Search
	if backend == nil {
		var err error
		backend, err = search.New(snap.Search(), search.Options{Workers: opts.Workers})
		if err != nil {
			log.Error("global scan failed", "error", err)
			return types.ScanCounters{}
		}
	}

	root := snap.Search().Root
	log.Info("global scan started", "root", root, "backend", backend.Name())

	var total types.ScanCounters
	for _, name := range snap.Targets() {
		paths, err := backend.Search(ctx, name, root)
		if err != nil {
			log.Error("global scan failed", "backend", backend.Name(), "target", name, "error", err)
			break
		}

		if len(paths) == 0 {
			log.Info("global scan found no files", "target", name)
			continue
		}

		var counters types.ScanCounters
		for _, path := range paths {
			if filepath.Base(path) != name {
				log.Warn("global scan result ignored: base name mismatch", "target", name, "path", path)
				continue
			}
			// Vanished since the search ran: not an error, not counted.
			if _, err := os.Lstat(path); err != nil {
				continue
			}
			opts.record(&counters, remover.Remove(types.MatchEvent{Path: path, Trigger: types.TriggerGlobalScan}))
		}

		if counters.Deleted > 0 {
			log.Info("global scan deleted files", "target", name, "deleted", counters.Deleted)
		}
		total.Add(counters)
	}

	logSummary(log, "global scan complete", total,
		"root", root,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return total
}

func logger() *logging.Logger {
	return logging.Get("scanner")
}

func logSummary(log *logging.Logger, msg string, c types.ScanCounters, kv ...interface{}) {
	args := append([]interface{}{"deleted", c.Deleted, "failed", c.Failed, "not_found", c.Benign}, kv...)
	if c.Failed > 0 {
		log.Warn(msg, args...)
		return
	}
	log.Info(msg, args...)
}
