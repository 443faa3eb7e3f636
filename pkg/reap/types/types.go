// Package types provides the value types shared by every discovery path
// of the reap file monitor: match events, deletion outcomes and per-scan
// counters, plus size formatting helpers used in log lines.
package types

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Trigger identifies which discovery path produced a MatchEvent.
type Trigger int

// Discovery paths, in the order they first run during a session.
const (
	TriggerInitialScan Trigger = iota
	TriggerGlobalScan
	TriggerCreated
	TriggerModified
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerInitialScan:
		return "initial_scan"
	case TriggerGlobalScan:
		return "global_scan"
	case TriggerCreated:
		return "created"
	case TriggerModified:
		return "modified"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// MatchEvent is a matching file found by one of the discovery paths.
// It is consumed immediately by the delete action and never stored.
type MatchEvent struct {
	// Path is the absolute path of the matching file.
	Path string

	// Trigger is the discovery path that found the file.
	Trigger Trigger
}

// DeletionOutcome records the result of a single delete attempt.
type DeletionOutcome struct {
	// Path is the file the attempt targeted.
	Path string

	// Trigger is copied from the MatchEvent that caused the attempt.
	Trigger Trigger

	// Success is true when the file was removed by this attempt.
	Success bool

	// Benign is true when the file was already gone. A benign outcome
	// is not a success and not an error condition.
	Benign bool

	// Size is the file size observed just before deletion (0 if unknown).
	Size int64

	// Err is the failure reason, nil on success.
	Err error
}

// Failed reports whether the attempt failed for a reason other than the
// file already being absent.
func (o DeletionOutcome) Failed() bool {
	return !o.Success && !o.Benign
}

// ScanCounters aggregates outcomes for one invocation of a scan function.
type ScanCounters struct {
	Deleted int
	Failed  int
	Benign  int
}

// Record folds a single outcome into the counters.
func (c *ScanCounters) Record(o DeletionOutcome) {
	switch {
	case o.Success:
		c.Deleted++
	case o.Benign:
		c.Benign++
	default:
		c.Failed++
	}
}

// Add merges other into c.
func (c *ScanCounters) Add(other ScanCounters) {
	c.Deleted += other.Deleted
	c.Failed += other.Failed
	c.Benign += other.Benign
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, e.g. "1.5 MiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
