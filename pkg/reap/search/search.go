// Package search provides the broad search facility used by the global
// scan: given a base name and a root, return every regular file under the
// root with that name.
//
// Three backends exist:
//
//   - walk: a native parallel walk with fastwalk (default)
//   - find: the external find(1) command
//   - osquery: the file table of a running osquery daemon
//
// Any backend failure is reported wrapped in ErrFacility.
package search

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

// ErrFacility is wrapped by every error a backend returns.
var ErrFacility = errors.New("search facility failed")

// ErrUnknownBackend is returned by New for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown search backend")

// Backend names.
const (
	BackendWalk    = "walk"
	BackendFind    = "find"
	BackendOSQuery = "osquery"
)

// Options tunes backend construction.
type Options struct {
	// Workers is the fastwalk worker count for the walk backend.
	// Zero uses fastwalk's default.
	Workers int
}

// New returns the backend named by cfg.Backend. An empty name selects walk.
func New(cfg config.SearchConfig, opts Options) (BroadSearch, error) {
	switch cfg.Backend {
	case BackendWalk, "":
		return NewWalk(opts.Workers), nil
	case BackendFind:
		return NewFind(), nil
	case BackendOSQuery:
		return NewOSQuery(cfg.OSQuerySocket, cfg.OSQueryTimeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func facilityError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFacility, backend, err)
}
