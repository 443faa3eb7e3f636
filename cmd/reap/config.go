package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage reap configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/reap/config.yaml (if set)
  2. ~/.config/reap/config.yaml

Environment variables can override config file settings using the REAP_ prefix:
  REAP_SCAN_INTERVAL=600
  REAP_SEARCH_BACKEND=find
  REAP_DELETE_MODE=trash`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after file, environment and flag overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is $VISUAL, then $EDITOR, then vi. A default config file is
written first if none exists.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the effective configuration.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	builder, dropped, buildErr := config.FromConfig(cfg)
	overDropped, overErrs := applyOverrides(cmd, builder)
	dropped = append(dropped, overDropped...)

	var rows [][2]string
	snap, snapErr := builder.Build()
	if snapErr == nil {
		rows = settingRows(snap.Targets(), snap.Dirs(), int(snap.ScanInterval().Seconds()), snap.Search(), snap.DeleteMode())
	} else {
		rows = settingRows(builder.Targets(), builder.Dirs(), builder.Interval(), cfg.Search, cfg.Delete.Mode)
	}

	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	rows = append(rows, [2]string{"logging.level", cfg.Logging.Level}, [2]string{"logging.path", logPath})

	var problems []string
	for _, d := range dropped {
		problems = append(problems, "ignored directory: "+d)
	}
	for _, e := range append([]error{buildErr, snapErr}, overErrs...) {
		if e != nil {
			problems = append(problems, e.Error())
		}
	}

	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "REAP_") {
			env = append(env, kv)
		}
	}
	if len(env) == 0 {
		env = []string{"(none)"}
	}

	out := cmd.OutOrStdout()
	writeSection(out, "Current Configuration", nil)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(problems) > 0 {
		writeSection(out, "\nProblems", problems)
	}
	writeSection(out, "\nEnvironment Overrides", env)
	return nil
}

func settingRows(targets, dirs []string, interval int, search config.SearchConfig, mode string) [][2]string {
	rows := [][2]string{
		{"targets", strings.Join(targets, ", ")},
		{"dirs", strings.Join(dirs, ", ")},
		{"scan_interval", fmt.Sprintf("%d seconds", interval)},
		{"search.backend", search.Backend},
		{"search.root", search.Root},
	}
	if search.Backend == "osquery" {
		rows = append(rows, [2]string{"search.osquery", fmt.Sprintf("%s (timeout %s)", search.OSQuerySocket, search.OSQueryTimeout)})
	}
	return append(rows, [2]string{"delete.mode", mode})
}

func writeSection(out io.Writer, title string, lines []string) {
	fmt.Fprintln(out, title+":")
	fmt.Fprintln(out, strings.Repeat("-", len(strings.TrimSpace(title))+1))
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}

// editorCommand returns the user's editor as argv. $VISUAL wins over
// $EDITOR; either may carry arguments, e.g. "code --wait".
func editorCommand() []string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(name)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// runConfigEdit opens the config file in an editor, creating it first.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	argv := append(editorCommand(), configPath)
	printVerbose("Opening %s with %s", configPath, argv[0])

	editorCmd := exec.Command(argv[0], argv[1:]...)
	editorCmd.Stdin, editorCmd.Stdout, editorCmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'reap config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
