package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/reap/cmd/reap/tui"
	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/logging"
	"github.com/jamesainslie/reap/pkg/reap/monitor"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "reap",
		Short: "Watch directories and delete unwanted files by name",
		Long: `Reap watches directory trees and deletes every file whose base name is
on the target list. Files are caught three ways: a scan of each tree at
startup, filesystem events while running, and a periodic global scan of
the home directory.

Examples:
  reap                                    # Monitor with configured settings
  reap --files diff_result.html,a.tmp     # Override target names
  reap --dirs ~/src,~/tmp --interval 600  # Override trees and scan interval
  reap --menu                             # Adjust settings interactively first
  reap scan                               # One-shot cleanup, then exit
  reap config show                        # Show configuration`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMonitor,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/reap/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "no console log output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	addOverrideFlags(rootCmd)

	rootCmd.Flags().Bool("menu", false, "show the interactive menu before monitoring")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("%v", err)
	}
	return err
}

// runMonitor is the default action: build the snapshot and monitor until
// interrupted.
func runMonitor(cmd *cobra.Command, _ []string) error {
	builder, cleanup, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if menu, _ := cmd.Flags().GetBool("menu"); menu {
		start, err := tui.Run(builder)
		if err != nil {
			return fmt.Errorf("menu failed: %w", err)
		}
		if !start {
			printInfo("Exiting.")
			return nil
		}
	}

	snap, err := builder.Build()
	if err != nil {
		if errors.Is(err, config.ErrNoWatchDirs) {
			return fmt.Errorf("%w: set --dirs or dirs in the config file", err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printVerbose("Monitoring %d directories, log file %s", len(snap.Dirs()), logging.Path())
	session := monitor.New(snap, monitor.WithTuning(tuning(cmd)))
	return session.Run(ctx)
}

// prepare loads configuration, starts logging and applies flag overrides.
// Rejected overrides are reported and the previous values kept.
func prepare(cmd *cobra.Command) (*config.Builder, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := setupLogging(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialise logging: %w", err)
	}
	cleanup := func() { _ = logging.Close() }

	log := logging.Get("config")

	builder, dropped, err := config.FromConfig(cfg)
	for _, d := range dropped {
		log.Warn("ignoring configured directory", "dir", d)
	}
	if err != nil {
		log.Warn("invalid configuration values, defaults kept", "error", err)
		printError("%v", err)
	}

	dropped, errs := applyOverrides(cmd, builder)
	for _, d := range dropped {
		log.Warn("ignoring directory override", "dir", d)
	}
	for _, err := range errs {
		log.Warn("override rejected", "error", err)
		printError("%v", err)
	}

	return builder, cleanup, nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
