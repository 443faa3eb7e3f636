package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reap/pkg/reap/remove"
	"github.com/jamesainslie/reap/pkg/reap/report"
	"github.com/jamesainslie/reap/pkg/reap/scanner"
	"github.com/jamesainslie/reap/pkg/reap/search"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Delete existing target files once and exit",
	Long: `Run the startup phase of monitoring only: scan every configured
directory tree, then run one global scan, print a summary and exit.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("no-global", false, "skip the global scan")
	scanCmd.Flags().StringP("output", "o", "", "report format: pretty, plain, json, jsonl or yaml (default: summary lines)")
	rootCmd.AddCommand(scanCmd)
}

// runScan performs one tree scan per directory and one global scan.
func runScan(cmd *cobra.Command, _ []string) error {
	builder, cleanup, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := builder.Build()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	var formatter report.Formatter
	if format != "" {
		formatter, err = report.Get(format)
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, report.Available())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector report.Collector
	cfg := tuning(cmd)
	opts := scanner.NewOptions(
		scanner.WithRemover(remove.New(snap.DeleteMode())),
		scanner.WithWorkers(cfg.WalkWorkers),
		scanner.WithOutcomeHook(collector.Record))

	start := time.Now()
	tree := scanner.ScanTrees(ctx, snap, opts)
	collector.AddPhase("Tree scan", tree, time.Since(start))
	if formatter == nil {
		printSummary("Tree scan", tree)
	}

	var backendName string
	if noGlobal, _ := cmd.Flags().GetBool("no-global"); !noGlobal && ctx.Err() == nil {
		backend, err := search.New(snap.Search(), search.Options{Workers: cfg.WalkWorkers})
		if err != nil {
			return err
		}
		backendName = backend.Name()
		opts.Search = backend
		printVerbose("Global scan of %s with %s", snap.Search().Root, backendName)

		globalStart := time.Now()
		global := scanner.GlobalScan(ctx, snap, opts)
		collector.AddPhase("Global scan", global, time.Since(globalStart))
		if formatter == nil {
			printSummary("Global scan", global)
		}
	}

	if formatter != nil {
		result := collector.Result()
		result.Dirs = snap.Dirs()
		if backendName != "" {
			result.SearchRoot = snap.Search().Root
			result.Backend = backendName
		}
		result.Interrupted = ctx.Err() != nil

		var buf bytes.Buffer
		if err := formatter.Format(&buf, result); err != nil {
			return fmt.Errorf("formatting report: %w", err)
		}
		if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	printVerbose("Finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func printSummary(label string, c types.ScanCounters) {
	line := fmt.Sprintf("%s: %d deleted", label, c.Deleted)
	if c.Failed > 0 {
		line += fmt.Sprintf(", %d failed", c.Failed)
	}
	if c.Benign > 0 {
		line += fmt.Sprintf(", %d already gone", c.Benign)
	}
	printInfo("%s", line)
}
