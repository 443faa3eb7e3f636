// Package report formats the result of a one-shot reap scan for display
// or for scripts (pretty, plain, json, jsonl, yaml).
//
// Formatters are looked up by name in a registry:
//
//	f, err := report.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := f.Format(&buf, result); err != nil {
//	    return err
//	}
package report

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/reap/pkg/reap/types"
)

// Entry is one delete attempt worth reporting: a deleted file or a
// failure. Attempts on files that were already gone are only counted.
type Entry struct {
	Path    string
	Trigger types.Trigger
	Size    int64
	Err     string
}

// Phase summarizes one scan phase.
type Phase struct {
	Name     string
	Counters types.ScanCounters
	Duration time.Duration
}

// Result is the complete output of a scan run.
type Result struct {
	// Deleted lists removed files in the order they were removed.
	Deleted []Entry

	// Failed lists attempts that failed for a reason other than the file
	// being absent.
	Failed []Entry

	// Phases holds one summary per phase in the order they ran.
	Phases []Phase

	// Dirs are the directories the tree scan covered.
	Dirs []string

	// SearchRoot and Backend describe the global scan, empty if skipped.
	SearchRoot string
	Backend    string

	// Interrupted is set when the run was canceled by a signal.
	Interrupted bool
}

// Totals sums the counters of every phase.
func (r *Result) Totals() types.ScanCounters {
	var c types.ScanCounters
	for _, p := range r.Phases {
		c.Add(p.Counters)
	}
	return c
}

// DeletedSize is the number of bytes freed.
func (r *Result) DeletedSize() int64 {
	var total int64
	for _, e := range r.Deleted {
		total += e.Size
	}
	return total
}

// Duration is the time spent across all phases.
func (r *Result) Duration() time.Duration {
	var d time.Duration
	for _, p := range r.Phases {
		d += p.Duration
	}
	return d
}

// Collector accumulates delete outcomes into a Result. Its Record method
// fits scanner.WithOutcomeHook.
type Collector struct {
	mu     sync.Mutex
	result Result
}

// Record adds a single outcome.
func (c *Collector) Record(o types.DeletionOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case o.Success:
		c.result.Deleted = append(c.result.Deleted, Entry{Path: o.Path, Trigger: o.Trigger, Size: o.Size})
	case o.Benign:
	default:
		e := Entry{Path: o.Path, Trigger: o.Trigger, Size: o.Size}
		if o.Err != nil {
			e.Err = o.Err.Error()
		}
		c.result.Failed = append(c.result.Failed, e)
	}
}

// AddPhase appends a phase summary.
func (c *Collector) AddPhase(name string, counters types.ScanCounters, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Phases = append(c.result.Phases, Phase{Name: name, Counters: counters, Duration: d})
}

// Result returns a copy of what has been collected.
func (c *Collector) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.result
	r.Deleted = append([]Entry(nil), c.result.Deleted...)
	r.Failed = append([]Entry(nil), c.result.Failed...)
	r.Phases = append([]Phase(nil), c.result.Phases...)
	return &r
}

// Formatter renders a Result.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the formatters in the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
