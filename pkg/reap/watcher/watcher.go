// Package watcher turns filesystem notifications below registered
// directory trees into types.MatchEvents for files whose base name is a
// target.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/reap/pkg/reap/logging"
	"github.com/jamesainslie/reap/pkg/reap/match"
	"github.com/jamesainslie/reap/pkg/reap/tuner"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

var (
	// ErrClosed is returned when registering on a closed watcher.
	ErrClosed = errors.New("watcher closed")

	// ErrNotDirectory is returned when registering something other than a
	// directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Options configures a Watcher.
type Options struct {
	// Matcher selects which base names produce events. Required.
	Matcher *match.Matcher

	// EventBuffer is the capacity of the Events channel
	// (default tuner.DefaultEventBuffer).
	EventBuffer int

	// WatchLimit is the platform watch limit; a warning is logged once
	// registrations exceed it. Zero disables the check.
	WatchLimit int
}

// Watcher watches registered directory trees. One fsnotify watcher serves
// every registration.
type Watcher struct {
	watcher *fsnotify.Watcher
	matcher *match.Matcher
	events  chan types.MatchEvent
	limit   int

	mu     sync.RWMutex
	paths  map[string]map[*Subscription]struct{} // watched dir -> owners
	closed bool
	warned bool

	runOnce sync.Once
}

// New creates a Watcher.
func New(opts Options) (*Watcher, error) {
	if opts.Matcher == nil {
		return nil, errors.New("watcher: matcher is required")
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = tuner.DefaultEventBuffer
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fsw,
		matcher: opts.Matcher,
		events:  make(chan types.MatchEvent, opts.EventBuffer),
		limit:   opts.WatchLimit,
		paths:   make(map[string]map[*Subscription]struct{}),
	}, nil
}

// Events returns the channel of match events. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan types.MatchEvent {
	return w.events
}

// Register starts watching dir and every directory below it. A dir that
// is itself a symlink is resolved to its target; symlinks below it are not
// followed. Subdirectories that cannot be watched are logged and skipped;
// only a failure on dir itself is an error.
func (w *Watcher) Register(dir string) (*Subscription, error) {
	root, err := ResolveRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", dir, err)
	}

	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("register %s: %w", root, ErrNotDirectory)
	}

	sub := &Subscription{w: w, root: root}

	if err := w.addWatch(root, []*Subscription{sub}); err != nil {
		return nil, fmt.Errorf("register %s: %w", root, err)
	}
	w.addTree(root, []*Subscription{sub}, nil)

	sub.mu.Lock()
	sub.state = StateRegistered
	sub.mu.Unlock()

	logging.Get("watcher").Info("watch registered", "root", root, "dirs", w.ownedCount(sub))
	return sub, nil
}

// ResolveRoot returns the absolute form of dir. When dir itself is a
// symlink it is replaced by its fully resolved target, so the watch covers
// the tree a scan of dir would walk.
func ResolveRoot(dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	info, err := os.Lstat(root)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return root, nil
	}
	return filepath.EvalSymlinks(root)
}

// Run delivers events until ctx is canceled or the watcher is closed,
// then closes the Events channel. Run must be called at most once; later
// calls return immediately.
func (w *Watcher) Run(ctx context.Context) {
	first := false
	w.runOnce.Do(func() { first = true })
	if !first {
		return
	}
	defer close(w.events)

	log := logging.Get("watcher")
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(ctx, event) {
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("event queue overflow, events lost until next global scan", "error", err)
				continue
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// Close stops all subscriptions and releases the fsnotify watcher, which
// ends Run.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	subs := make(map[*Subscription]struct{})
	for _, owners := range w.paths {
		for s := range owners {
			subs[s] = struct{}{}
		}
	}
	w.paths = make(map[string]map[*Subscription]struct{})
	w.mu.Unlock()

	for s := range subs {
		s.markStopped()
	}
	return w.watcher.Close()
}

// WatchCount returns the number of watched directories.
func (w *Watcher) WatchCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.paths)
}

// handleEvent processes one notification. It returns false when delivery
// was abandoned because ctx ended.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	switch {
	case event.Has(fsnotify.Create):
		return w.handleCreate(ctx, event.Name)
	case event.Has(fsnotify.Write):
		return w.emitIfMatch(ctx, event.Name, types.TriggerModified)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A renamed directory is rewatched through the Create at its new name.
		w.removeTree(event.Name)
	}
	return true
}

func (w *Watcher) handleCreate(ctx context.Context, path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		// Already gone; the delete attempt will be a benign failure.
		return w.emitIfMatch(ctx, path, types.TriggerCreated)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return true
	}

	if !info.IsDir() {
		return w.emitIfMatch(ctx, path, types.TriggerCreated)
	}

	owners := w.ownersOf(filepath.Dir(path))
	if len(owners) == 0 {
		return true
	}
	if err := w.addWatch(path, owners); err != nil {
		return true
	}

	// Files written into the directory before its watch existed would
	// otherwise be missed.
	var pending []string
	w.addTree(path, owners, &pending)
	for _, p := range pending {
		if !w.emit(ctx, types.MatchEvent{Path: p, Trigger: types.TriggerCreated}) {
			return false
		}
	}
	return true
}

func (w *Watcher) emitIfMatch(ctx context.Context, path string, trigger types.Trigger) bool {
	if !w.matcher.MatchPath(path) {
		return true
	}
	return w.emit(ctx, types.MatchEvent{Path: path, Trigger: trigger})
}

func (w *Watcher) emit(ctx context.Context, ev types.MatchEvent) bool {
	logging.Get("watcher").Debug("match event", "path", ev.Path, "trigger", ev.Trigger)
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// addTree watches every directory below root (root itself excluded) for
// owners. When pending is non-nil, matching regular files found on the
// way are appended to it.
func (w *Watcher) addTree(root string, owners []*Subscription, pending *[]string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			if path != root {
				_ = w.addWatch(path, owners)
			}
			return nil
		}
		if pending != nil && d.Type().IsRegular() && w.matcher.Match(d.Name()) {
			*pending = append(*pending, path)
		}
		return nil
	})
}

// addWatch adds a single directory to the watch list for owners.
func (w *Watcher) addWatch(path string, owners []*Subscription) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if set, ok := w.paths[path]; ok {
		for _, s := range owners {
			set[s] = struct{}{}
		}
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logging.Get("watcher").Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	set := make(map[*Subscription]struct{}, len(owners))
	for _, s := range owners {
		set[s] = struct{}{}
	}
	w.paths[path] = set

	if w.limit > 0 && !w.warned && len(w.paths) > w.limit {
		w.warned = true
		logging.Get("watcher").Warn("watch count exceeds platform limit",
			"watches", len(w.paths), "limit", w.limit)
	}
	return nil
}

// removeTree drops the watches for path and everything below it.
func (w *Watcher) removeTree(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for p := range w.paths {
		if p == path || isSubPath(p, path) {
			_ = w.watcher.Remove(p)
			delete(w.paths, p)
		}
	}
}

func (w *Watcher) ownersOf(dir string) []*Subscription {
	w.mu.RLock()
	defer w.mu.RUnlock()

	set := w.paths[dir]
	owners := make([]*Subscription, 0, len(set))
	for s := range set {
		owners = append(owners, s)
	}
	return owners
}

func (w *Watcher) ownedCount(sub *Subscription) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := 0
	for _, owners := range w.paths {
		if _, ok := owners[sub]; ok {
			n++
		}
	}
	return n
}

// release drops sub's claim on every watch, removing watches nobody else
// owns.
func (w *Watcher) release(sub *Subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	for p, owners := range w.paths {
		if _, ok := owners[sub]; !ok {
			continue
		}
		delete(owners, sub)
		if len(owners) == 0 {
			_ = w.watcher.Remove(p)
			delete(w.paths, p)
		}
	}
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
