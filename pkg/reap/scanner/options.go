package scanner

import (
	"github.com/jamesainslie/reap/pkg/reap/remove"
	"github.com/jamesainslie/reap/pkg/reap/search"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

// Options configures ScanTree and GlobalScan. The zero value is usable:
// missing collaborators are derived from the snapshot.
type Options struct {
	// Remover deletes matches. Nil uses remove.New(snap.DeleteMode()).
	Remover *remove.Remover

	// Search is the broad search backend for GlobalScan. Nil builds one
	// from snap.Search().
	Search search.BroadSearch

	// Workers is the fastwalk worker count (0 = fastwalk default).
	Workers int

	// OnOutcome, if set, receives every delete attempt. Calls are never
	// concurrent.
	OnOutcome func(types.DeletionOutcome)
}

// Option modifies Options.
type Option func(*Options)

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

// WithWorkers sets the walk worker count.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithOutcomeHook sets a callback for every delete attempt.
func WithOutcomeHook(fn func(types.DeletionOutcome)) Option {
	return func(o *Options) {
		o.OnOutcome = fn
	}
}

// record counts o and hands it to the outcome hook.
func (o Options) record(c *types.ScanCounters, outcome types.DeletionOutcome) {
	c.Record(outcome)
	if o.OnOutcome != nil {
		o.OnOutcome(outcome)
	}
}

// NewOptions applies opts to the zero Options.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
