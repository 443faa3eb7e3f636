package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jamesainslie/reap/pkg/reap/logging"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Console    string            `mapstructure:"console"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// SearchConfig selects and configures the broad search backend.
type SearchConfig struct {
	Backend        string        `mapstructure:"backend"`
	Root           string        `mapstructure:"root"` // Empty means the user's home directory
	OSQuerySocket  string        `mapstructure:"osquery_socket"`
	OSQueryTimeout time.Duration `mapstructure:"osquery_timeout"`
}

// DeleteConfig configures how matching files are removed.
type DeleteConfig struct {
	Mode string `mapstructure:"mode"`
}

// Config is the raw configuration as read from file and environment.
// It is not validated; feed it to a Builder to obtain a Snapshot.
type Config struct {
	Targets      []string      `mapstructure:"targets"`
	Dirs         []string      `mapstructure:"dirs"`
	ScanInterval int           `mapstructure:"scan_interval"`
	Search       SearchConfig  `mapstructure:"search"`
	Delete       DeleteConfig  `mapstructure:"delete"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// If configFile is empty the file is looked up in (highest precedence first):
//   - $XDG_CONFIG_HOME/reap/config.yaml
//   - $HOME/.config/reap/config.yaml
//
// Environment variables are prefixed with REAP_ (e.g., REAP_SCAN_INTERVAL).
func Load(configFile string) (*Config, error) {
	v := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "reap"))
		}
		v.AddConfigPath(filepath.Join(homeDir, ".config", "reap"))
	}

	v.SetEnvPrefix("REAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, homeDir)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i, dir := range cfg.Dirs {
		if expanded, err := ExpandPath(dir); err == nil {
			cfg.Dirs[i] = expanded
		}
	}
	if expanded, err := ExpandPath(cfg.Search.Root); err == nil {
		cfg.Search.Root = expanded
	}

	return &cfg, nil
}

// setDefaults registers every default with v.
func setDefaults(v *viper.Viper, homeDir string) {
	dirs := []string{homeDir}
	if cwd, err := os.Getwd(); err == nil && cwd != homeDir {
		dirs = append([]string{cwd}, dirs...)
	}

	v.SetDefault("targets", DefaultTargets)
	v.SetDefault("dirs", dirs)
	v.SetDefault("scan_interval", DefaultScanInterval)

	v.SetDefault("search.backend", DefaultSearchBackend)
	v.SetDefault("search.root", "") // Empty means the user's home directory
	v.SetDefault("search.osquery_socket", DefaultOSQuerySocket)
	v.SetDefault("search.osquery_timeout", DefaultOSQueryTimeout)

	v.SetDefault("delete.mode", DefaultDeleteMode)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.console", "info")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"monitor": "info",
		"watcher": "info",
		"scanner": "info",
		"search":  "info",
		"remove":  "info",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "reap"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "reap"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# reap file monitor configuration

# File base names to delete wherever they appear (exact, case-sensitive)
targets:
  - %s

# Directory trees to scan at startup and watch for changes.
# Entries that are not existing directories are dropped with a warning.
dirs:
  - ~

# Seconds between global scans
scan_interval: %d

# Global scan search backend
search:
  # walk (native), find (external find command) or osquery
  backend: %s
  # Root of the global scan (empty means the user's home directory)
  root: ""
  osquery_socket: %s
  osquery_timeout: %s

# How matching files are removed: remove (permanent) or trash
delete:
  mode: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/reap/reap.log)
  path: ""
  # Console level (empty disables console output)
  console: info
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    monitor: info
    watcher: info
    scanner: info
    search: info
    remove: info
`, DefaultTargets[0], DefaultScanInterval, DefaultSearchBackend, DefaultOSQuerySocket,
		DefaultOSQueryTimeout, DefaultDeleteMode)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DefaultLogPath returns the log file used when logging.path is empty.
func DefaultLogPath() string {
	return logging.DefaultLogPath()
}
