package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/tuner"
)

// addOverrideFlags registers the flags that override configuration values.
func addOverrideFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("files", "", "target file names, comma separated")
	flags.String("dirs", "", "directories to scan and watch, comma separated")
	flags.String("interval", "", "seconds between global scans")
	flags.String("search-backend", "", "global scan backend: walk, find or osquery")
	flags.String("search-root", "", "root of the global scan (default: home directory)")
	flags.String("delete-mode", "", "remove (permanent) or trash")
	flags.IntP("workers", "w", 0, "override walk worker count (0=auto)")
}

// applyOverrides applies every override flag the user set to b. Each
// rejected override is returned as an error and leaves the previous value
// in place; directories dropped from a partially valid --dirs list are
// returned separately.
func applyOverrides(cmd *cobra.Command, b *config.Builder) ([]string, []error) {
	flags := cmd.Flags()
	var (
		dropped []string
		errs    []error
	)

	if flags.Changed("files") {
		v, _ := flags.GetString("files")
		if err := b.SetTargets(parseCommaSeparated(v)); err != nil {
			errs = append(errs, err)
		}
	}

	if flags.Changed("dirs") {
		v, _ := flags.GetString("dirs")
		d, err := b.SetDirs(parseCommaSeparated(v))
		dropped = d
		if err != nil {
			errs = append(errs, err)
		}
	}

	if flags.Changed("interval") {
		v, _ := flags.GetString("interval")
		if err := b.SetIntervalString(v); err != nil {
			errs = append(errs, err)
		}
	}

	if flags.Changed("search-backend") {
		v, _ := flags.GetString("search-backend")
		if err := b.SetSearchBackend(v); err != nil {
			errs = append(errs, err)
		}
	}

	if flags.Changed("search-root") {
		v, _ := flags.GetString("search-root")
		b.SetSearchRoot(v)
	}

	if flags.Changed("delete-mode") {
		v, _ := flags.GetString("delete-mode")
		if err := b.SetDeleteMode(v); err != nil {
			errs = append(errs, err)
		}
	}

	return dropped, errs
}

// tuning returns worker and buffer sizing, honouring --workers.
func tuning(cmd *cobra.Command) tuner.OptimalConfig {
	resources, err := tuner.Detect()
	if err != nil {
		printVerbose("resource detection: %v", err)
	}
	workers, _ := cmd.Flags().GetInt("workers")
	return tuner.CalculateWithOverrides(resources, workers)
}

// parseCommaSeparated splits a comma-separated string and trims whitespace.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
