package monitor

import (
	"sync/atomic"

	"github.com/jamesainslie/reap/pkg/reap/types"
)

// counters is a concurrency-safe ScanCounters.
type counters struct {
	deleted atomic.Int64
	failed  atomic.Int64
	benign  atomic.Int64
}

func (c *counters) add(s types.ScanCounters) {
	c.deleted.Add(int64(s.Deleted))
	c.failed.Add(int64(s.Failed))
	c.benign.Add(int64(s.Benign))
}

func (c *counters) load() types.ScanCounters {
	return types.ScanCounters{
		Deleted: int(c.deleted.Load()),
		Failed:  int(c.failed.Load()),
		Benign:  int(c.benign.Load()),
	}
}

// Totals summarises a session's outcomes per discovery path.
type Totals struct {
	InitialScan types.ScanCounters
	GlobalScan  types.ScanCounters
	Events      types.ScanCounters

	// GlobalScans is the number of global scan cycles run, the initial
	// one included.
	GlobalScans int
}

// Deleted returns the number of files deleted by all paths.
func (t Totals) Deleted() int {
	return t.InitialScan.Deleted + t.GlobalScan.Deleted + t.Events.Deleted
}
