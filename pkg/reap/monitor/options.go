package monitor

import (
	"context"
	"time"

	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/remove"
	"github.com/jamesainslie/reap/pkg/reap/scanner"
	"github.com/jamesainslie/reap/pkg/reap/search"
	"github.com/jamesainslie/reap/pkg/reap/tuner"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

// DefaultPollInterval is how often the driver checks whether a global
// scan is due.
const DefaultPollInterval = time.Second

// TreeScanFunc scans one directory tree.
type TreeScanFunc func(ctx context.Context, root string, snap *config.Snapshot, opts scanner.Options) types.ScanCounters

// GlobalScanFunc runs one global scan cycle.
type GlobalScanFunc func(ctx context.Context, snap *config.Snapshot, opts scanner.Options) types.ScanCounters

// Options holds the session's collaborators. Zero fields get defaults.
type Options struct {
	// PollInterval is the steady-state check period (default 1s).
	PollInterval time.Duration

	// ScanInterval overrides the snapshot's global scan interval.
	ScanInterval time.Duration

	// Tuning sizes the walk and the event buffer (default tuner.Auto()).
	Tuning *tuner.OptimalConfig

	// Remover performs deletions (default remove.New(snap.DeleteMode())).
	Remover *remove.Remover

	// Search is the broad search backend (default from snap.Search()).
	Search search.BroadSearch

	TreeScan   TreeScanFunc
	GlobalScan GlobalScanFunc

	// Now returns the current time (default time.Now).
	Now func() time.Time
}

// Option modifies Options.
type Option func(*Options)

// WithPollInterval sets the polling period.
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = d
	}
}

// WithScanInterval overrides the global scan interval.
func WithScanInterval(d time.Duration) Option {
	return func(o *Options) {
		o.ScanInterval = d
	}
}

// WithTuning sets worker and buffer sizing.
func WithTuning(cfg tuner.OptimalConfig) Option {
	return func(o *Options) {
		o.Tuning = &cfg
	}
}

// WithRemover sets the delete action.
func WithRemover(r *remove.Remover) Option {
	return func(o *Options) {
		o.Remover = r
	}
}

// WithSearch sets the broad search backend.
func WithSearch(s search.BroadSearch) Option {
	return func(o *Options) {
		o.Search = s
	}
}

// WithTreeScan replaces the tree scanner.
func WithTreeScan(fn TreeScanFunc) Option {
	return func(o *Options) {
		o.TreeScan = fn
	}
}

// WithGlobalScan replaces the global scanner.
func WithGlobalScan(fn GlobalScanFunc) Option {
	return func(o *Options) {
		o.GlobalScan = fn
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

func (o *Options) applyDefaults(snap *config.Snapshot) {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.ScanInterval <= 0 {
		o.ScanInterval = snap.ScanInterval()
	}
	if o.Tuning == nil {
		t := tuner.Auto()
		o.Tuning = &t
	}
	if o.Remover == nil {
		o.Remover = remove.New(snap.DeleteMode())
	}
	if o.TreeScan == nil {
		o.TreeScan = scanner.ScanTree
	}
	if o.GlobalScan == nil {
		o.GlobalScan = scanner.GlobalScan
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
