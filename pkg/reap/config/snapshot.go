package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Configuration errors. Overrides that fail with one of these are rejected
// and the previous value is retained.
var (
	ErrInvalidTargets       = errors.New("invalid target file names")
	ErrInvalidInterval      = errors.New("invalid scan interval")
	ErrNoWatchDirs          = errors.New("no valid watch directories")
	ErrInvalidSearchBackend = errors.New("invalid search backend")
	ErrInvalidDeleteMode    = errors.New("invalid delete mode")
)

// Snapshot is the immutable configuration of one monitoring session.
// All accessors return copies, so a Snapshot can be shared freely between
// goroutines without locking.
type Snapshot struct {
	targets      []string
	dirs         []string
	scanInterval time.Duration
	search       SearchConfig
	deleteMode   string
}

// Targets returns the target file names in configured order.
func (s *Snapshot) Targets() []string {
	return slices.Clone(s.targets)
}

// Dirs returns the absolute watch directories in configured order.
func (s *Snapshot) Dirs() []string {
	return slices.Clone(s.dirs)
}

// ScanInterval returns the time between global scans.
func (s *Snapshot) ScanInterval() time.Duration {
	return s.scanInterval
}

// Search returns the broad search configuration. Root is always resolved.
func (s *Snapshot) Search() SearchConfig {
	return s.search
}

// DeleteMode returns how matching files are removed.
func (s *Snapshot) DeleteMode() string {
	return s.deleteMode
}

// HasTarget reports whether name is one of the target file names.
func (s *Snapshot) HasTarget(name string) bool {
	return slices.Contains(s.targets, name)
}

// Builder accumulates configuration overrides before a session starts.
// Every setter validates its input; a rejected override leaves the
// previous value untouched. Builder is not safe for concurrent use.
type Builder struct {
	targets    []string
	dirs       []string
	interval   int
	search     SearchConfig
	deleteMode string
}

// NewBuilder returns a Builder holding the built-in defaults.
// Watch directories default to none; callers must set at least one.
func NewBuilder() *Builder {
	return &Builder{
		targets:  slices.Clone(DefaultTargets),
		interval: DefaultScanInterval,
		search: SearchConfig{
			Backend:        DefaultSearchBackend,
			OSQuerySocket:  DefaultOSQuerySocket,
			OSQueryTimeout: DefaultOSQueryTimeout,
		},
		deleteMode: DefaultDeleteMode,
	}
}

// FromConfig returns a Builder seeded from a loaded Config. Invalid values
// in cfg are rejected one by one and reported in the joined error; the
// defaults stay in place for those fields. Dropped directories are returned
// so the caller can warn about them.
func FromConfig(cfg *Config) (*Builder, []string, error) {
	b := NewBuilder()
	var errs []error

	if len(cfg.Targets) > 0 {
		if err := b.SetTargets(cfg.Targets); err != nil {
			errs = append(errs, err)
		}
	}

	var dropped []string
	if len(cfg.Dirs) > 0 {
		d, err := b.SetDirs(cfg.Dirs)
		dropped = d
		if err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.ScanInterval != 0 {
		if err := b.SetInterval(cfg.ScanInterval); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.Search.Backend != "" {
		if err := b.SetSearchBackend(cfg.Search.Backend); err != nil {
			errs = append(errs, err)
		}
	}
	b.search.Root = cfg.Search.Root
	if cfg.Search.OSQuerySocket != "" {
		b.search.OSQuerySocket = cfg.Search.OSQuerySocket
	}
	if cfg.Search.OSQueryTimeout > 0 {
		b.search.OSQueryTimeout = cfg.Search.OSQueryTimeout
	}

	if cfg.Delete.Mode != "" {
		if err := b.SetDeleteMode(cfg.Delete.Mode); err != nil {
			errs = append(errs, err)
		}
	}

	return b, dropped, errors.Join(errs...)
}

// SetTargets replaces the target file names. Entries are trimmed and
// deduplicated keeping first occurrence. Names containing a path separator
// are not base names and are rejected along with the whole override.
func (b *Builder) SetTargets(names []string) error {
	var targets []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.ContainsRune(name, filepath.Separator) || name == "." || name == ".." {
			return fmt.Errorf("%w: %q is not a base name", ErrInvalidTargets, name)
		}
		if !slices.Contains(targets, name) {
			targets = append(targets, name)
		}
	}

	if len(targets) == 0 {
		return fmt.Errorf("%w: list is empty", ErrInvalidTargets)
	}

	b.targets = targets
	return nil
}

// SetTargetsString parses a comma separated list of target names.
func (b *Builder) SetTargetsString(s string) error {
	return b.SetTargets(strings.Split(s, ","))
}

// SetDirs replaces the watch directories with the entries of dirs that are
// existing directories, made absolute and deduplicated. The entries that
// were dropped are returned. If no entry is valid the override is rejected
// with ErrNoWatchDirs and the previous set is kept.
func (b *Builder) SetDirs(dirs []string) ([]string, error) {
	var (
		valid   []string
		dropped []string
	)

	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}

		abs, ok := resolveDir(dir)
		if !ok {
			dropped = append(dropped, dir)
			continue
		}
		if !slices.Contains(valid, abs) {
			valid = append(valid, abs)
		}
	}

	if len(valid) == 0 {
		return dropped, fmt.Errorf("%w: none of %v is a directory", ErrNoWatchDirs, dirs)
	}

	b.dirs = valid
	return dropped, nil
}

// SetDirsString parses a comma separated list of directories.
func (b *Builder) SetDirsString(s string) ([]string, error) {
	return b.SetDirs(strings.Split(s, ","))
}

// SetInterval sets the global scan interval in seconds.
func (b *Builder) SetInterval(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d must be a positive number of seconds", ErrInvalidInterval, seconds)
	}
	b.interval = seconds
	return nil
}

// SetIntervalString parses and sets the global scan interval in seconds.
func (b *Builder) SetIntervalString(s string) error {
	seconds, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidInterval, s)
	}
	return b.SetInterval(seconds)
}

// SetSearchBackend selects the broad search backend by name.
func (b *Builder) SetSearchBackend(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(SearchBackends, name) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidSearchBackend, name, SearchBackends)
	}
	b.search.Backend = name
	return nil
}

// SetSearchRoot sets the root of the global scan. Empty selects the home directory.
func (b *Builder) SetSearchRoot(root string) {
	b.search.Root = strings.TrimSpace(root)
}

// SetDeleteMode selects how files are removed.
func (b *Builder) SetDeleteMode(mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !slices.Contains(DeleteModes, mode) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidDeleteMode, mode, DeleteModes)
	}
	b.deleteMode = mode
	return nil
}

// Targets returns the current target names.
func (b *Builder) Targets() []string { return slices.Clone(b.targets) }

// Dirs returns the current watch directories.
func (b *Builder) Dirs() []string { return slices.Clone(b.dirs) }

// Interval returns the current scan interval in seconds.
func (b *Builder) Interval() int { return b.interval }

// Build freezes the current values into a Snapshot. Directories are
// re-checked because they may have vanished since they were set; at least
// one must remain.
func (b *Builder) Build() (*Snapshot, error) {
	var dirs []string
	for _, dir := range b.dirs {
		if _, ok := resolveDir(dir); ok {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil, ErrNoWatchDirs
	}

	targets := b.targets
	if len(targets) == 0 {
		targets = DefaultTargets
	}

	search := b.search
	if search.Root == "" {
		search.Root = xdg.Home
	}
	if abs, err := filepath.Abs(search.Root); err == nil {
		search.Root = abs
	}

	return &Snapshot{
		targets:      slices.Clone(targets),
		dirs:         dirs,
		scanInterval: time.Duration(b.interval) * time.Second,
		search:       search,
		deleteMode:   b.deleteMode,
	}, nil
}

// resolveDir expands, absolutizes and checks that dir is a directory. A
// dir that is itself a symlink is replaced by its resolved target.
func resolveDir(dir string) (string, bool) {
	expanded, err := ExpandPath(dir)
	if err != nil {
		return "", false
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", false
	}

	if li, err := os.Lstat(abs); err == nil && li.Mode()&os.ModeSymlink != 0 {
		if abs, err = filepath.EvalSymlinks(abs); err != nil {
			return "", false
		}
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false
	}

	return filepath.Clean(abs), true
}
