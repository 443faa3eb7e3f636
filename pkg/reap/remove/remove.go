// Package remove performs the delete action shared by every discovery path.
// A Remover never panics and never returns an error: each attempt yields a
// types.DeletionOutcome that callers count and move past.
package remove

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jamesainslie/reap/pkg/reap/logging"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

// Delete modes.
const (
	ModeRemove = "remove"
	ModeTrash  = "trash"
)

// ErrIsDirectory is returned for a match that names a directory. Only
// regular files are ever deleted.
var ErrIsDirectory = errors.New("is a directory")

// Remover deletes matched files.
type Remover struct {
	mode  string
	trash func(path string) error
}

// New returns a Remover for the given mode. Unknown or empty modes fall
// back to ModeRemove.
func New(mode string) *Remover {
	r := &Remover{mode: ModeRemove, trash: MoveToTrash}
	if mode == ModeTrash {
		r.mode = ModeTrash
	}
	return r
}

// Mode returns the active delete mode.
func (r *Remover) Mode() string {
	return r.mode
}

// Remove deletes ev.Path and logs the outcome. A path that no longer exists
// is a benign failure.
func (r *Remover) Remove(ev types.MatchEvent) types.DeletionOutcome {
	log := logging.Get("remove")
	out := types.DeletionOutcome{Path: ev.Path, Trigger: ev.Trigger}

	info, err := os.Lstat(ev.Path)
	if err == nil && info.IsDir() {
		err = fmt.Errorf("delete %s: %w", ev.Path, ErrIsDirectory)
	}
	if err == nil {
		out.Size = info.Size()
		err = r.delete(ev.Path)
	}

	switch {
	case err == nil:
		out.Success = true
		log.Info("deleted",
			"path", ev.Path,
			"trigger", ev.Trigger,
			"size", types.FormatSize(out.Size),
			"mode", r.mode)
	case errors.Is(err, fs.ErrNotExist):
		out.Benign = true
		out.Err = err
		log.Info("delete failed: not found", "path", ev.Path, "trigger", ev.Trigger)
	default:
		out.Err = err
		log.Error("delete failed", "path", ev.Path, "trigger", ev.Trigger, "error", err)
	}

	return out
}

func (r *Remover) delete(path string) error {
	if r.mode == ModeTrash {
		return r.trash(path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
