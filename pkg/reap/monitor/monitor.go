// Package monitor drives a monitoring session: it scans every configured
// tree, runs a first global scan, registers the watches, and then keeps
// deleting on events while running a global scan whenever the interval has
// elapsed since the previous one started.
//
// Typical use:
//
//	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	err := monitor.StartMonitoringSession(ctx, snap)
package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/logging"
	"github.com/jamesainslie/reap/pkg/reap/match"
	"github.com/jamesainslie/reap/pkg/reap/scanner"
	"github.com/jamesainslie/reap/pkg/reap/types"
	"github.com/jamesainslie/reap/pkg/reap/watcher"
)

// ErrAlreadyRun is returned when Run is called on a session twice.
var ErrAlreadyRun = errors.New("session already run")

// Session is one monitoring run over an immutable configuration snapshot.
type Session struct {
	id   string
	snap *config.Snapshot
	opts Options

	state   atomic.Int32
	started atomic.Bool

	initial     counters
	global      counters
	events      counters
	globalScans atomic.Int64
}

// New creates a session for snap.
func New(snap *config.Snapshot, opts ...Option) *Session {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.applyDefaults(snap)

	return &Session{
		id:   uuid.NewString(),
		snap: snap,
		opts: o,
	}
}

// StartMonitoringSession runs a session with default collaborators until
// ctx is canceled.
func StartMonitoringSession(ctx context.Context, snap *config.Snapshot) error {
	return New(snap).Run(ctx)
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Totals returns the outcome counts so far.
func (s *Session) Totals() Totals {
	return Totals{
		InitialScan: s.initial.load(),
		GlobalScan:  s.global.load(),
		Events:      s.events.load(),
		GlobalScans: int(s.globalScans.Load()),
	}
}

// Run executes the session and blocks until ctx is canceled and shutdown
// has completed. Scans are never interrupted: one in flight when ctx is
// canceled runs to completion first.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	log := logging.Get("monitor").With("session", s.id)
	s.logBanner(log)

	// Scans must finish even when ctx ends mid-scan.
	scanCtx := context.WithoutCancel(ctx)
	scanOpts := scanner.Options{
		Remover: s.opts.Remover,
		Search:  s.opts.Search,
		Workers: s.opts.Tuning.WalkWorkers,
	}

	s.setState(log, StateInitialScanning)
	for _, dir := range s.snap.Dirs() {
		s.initial.add(s.opts.TreeScan(scanCtx, dir, s.snap, scanOpts))
	}

	s.setState(log, StateInitialGlobalScanning)
	lastScanStart := s.runGlobalScan(scanCtx, scanOpts)

	w, subs := s.startWatcher(log)

	var wg sync.WaitGroup
	if w != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			s.handleEvents(w.Events())
		}()
	}

	s.setState(log, StateWatching)
	log.Info("monitoring started, press Ctrl+C to stop")

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if s.opts.Now().Sub(lastScanStart) >= s.opts.ScanInterval {
				log.Info("running periodic global scan")
				lastScanStart = s.runGlobalScan(scanCtx, scanOpts)
			}
		}
	}

	s.setState(log, StateStopping)
	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if w != nil {
		if err := w.Close(); err != nil {
			log.Warn("closing watcher", "error", err)
		}
	}
	// Run returns on cancel and closes Events; the handler drains what
	// is still buffered before exiting.
	wg.Wait()

	s.setState(log, StateStopped)
	s.logSummary(log)
	return nil
}

// runGlobalScan runs one cycle and returns the time it started.
func (s *Session) runGlobalScan(ctx context.Context, opts scanner.Options) time.Time {
	start := s.opts.Now()
	s.global.add(s.opts.GlobalScan(ctx, s.snap, opts))
	s.globalScans.Add(1)
	return start
}

// startWatcher registers every configured directory. A watcher that
// cannot be created leaves the session running on periodic scans alone.
func (s *Session) startWatcher(log *logging.Logger) (*watcher.Watcher, []*watcher.Subscription) {
	w, err := watcher.New(watcher.Options{
		Matcher:     match.FromSnapshot(s.snap),
		EventBuffer: s.opts.Tuning.EventBuffer,
		WatchLimit:  s.opts.Tuning.WatchLimit,
	})
	if err != nil {
		log.Error("event watcher unavailable, continuing with periodic scans only", "error", err)
		return nil, nil
	}

	var subs []*watcher.Subscription
	for _, dir := range s.snap.Dirs() {
		sub, err := w.Register(dir)
		if err != nil {
			log.Error("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		subs = append(subs, sub)
	}
	return w, subs
}

// handleEvents deletes each matched path, one at a time, in delivery
// order.
func (s *Session) handleEvents(events <-chan types.MatchEvent) {
	for ev := range events {
		var c types.ScanCounters
		c.Record(s.opts.Remover.Remove(ev))
		s.events.add(c)
	}
}

func (s *Session) setState(log *logging.Logger, st State) {
	s.state.Store(int32(st))
	log.Debug("state changed", "state", st)
}

func (s *Session) logBanner(log *logging.Logger) {
	log.Info("monitoring directories", "dirs", strings.Join(s.snap.Dirs(), ", "))
	log.Info("session configured",
		"targets", strings.Join(s.snap.Targets(), ", "),
		"scan_interval", s.opts.ScanInterval,
		"delete_mode", s.opts.Remover.Mode(),
		"search_backend", s.snap.Search().Backend,
		"search_root", s.snap.Search().Root)
}

func (s *Session) logSummary(log *logging.Logger) {
	t := s.Totals()
	log.Info("monitoring stopped",
		"deleted", t.Deleted(),
		"initial_scan", t.InitialScan.Deleted,
		"global_scan", t.GlobalScan.Deleted,
		"events", t.Events.Deleted,
		"global_scans", t.GlobalScans,
		"failed", t.InitialScan.Failed+t.GlobalScan.Failed+t.Events.Failed)
}
