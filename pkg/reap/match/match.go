// Package match decides whether a file base name is a deletion target.
package match

import (
	"path/filepath"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

// Matches reports whether baseName is one of the snapshot's target names.
// Matching is exact and case-sensitive.
func Matches(baseName string, snap *config.Snapshot) bool {
	return snap.HasTarget(baseName)
}

// Matcher is a set-backed matcher for the hot paths (walk callbacks and
// watcher events). It is immutable and safe for concurrent use.
type Matcher struct {
	names map[string]struct{}
}

// New builds a Matcher for the given target names.
func New(targets []string) *Matcher {
	names := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		names[t] = struct{}{}
	}
	return &Matcher{names: names}
}

// FromSnapshot builds a Matcher for the snapshot's target names.
func FromSnapshot(snap *config.Snapshot) *Matcher {
	return New(snap.Targets())
}

// Match reports whether baseName is a target.
func (m *Matcher) Match(baseName string) bool {
	_, ok := m.names[baseName]
	return ok
}

// MatchPath reports whether the base name of path is a target.
func (m *Matcher) MatchPath(path string) bool {
	return m.Match(filepath.Base(path))
}
