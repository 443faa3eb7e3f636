package report

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/reap/pkg/reap/types"
)

// PlainFormatter writes an unstyled tab-aligned table of deleted and
// failed files followed by one summary line per phase.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	fmt.Fprintln(tw, "STATUS\tSIZE\tTRIGGER\tPATH")
	for _, e := range r.Deleted {
		fmt.Fprintf(tw, "deleted\t%s\t%s\t%s\n", types.FormatSize(e.Size), e.Trigger, e.Path)
	}
	for _, e := range r.Failed {
		fmt.Fprintf(tw, "failed\t%s\t%s\t%s: %s\n", types.FormatSize(e.Size), e.Trigger, e.Path, e.Err)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, p := range r.Phases {
		fmt.Fprintf(w, "%s: %d deleted, %d failed, %d already gone in %s\n",
			p.Name, p.Counters.Deleted, p.Counters.Failed, p.Counters.Benign, p.Duration)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}

var _ Formatter = (*PlainFormatter)(nil)
