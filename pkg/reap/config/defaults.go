// Package config provides configuration management for the reap file monitor.
//
// Configuration is layered: built-in defaults, then the YAML config file,
// then REAP_ environment variables, then command-line or menu overrides.
// The result is frozen into an immutable Snapshot before monitoring starts.
package config

import "time"

// Default configuration values for reap.
const (
	// DefaultScanInterval is the global scan interval in seconds.
	DefaultScanInterval = 3600

	// DefaultSearchBackend is the broad search implementation used by global scans.
	DefaultSearchBackend = "walk"

	// DefaultDeleteMode removes matching files permanently.
	DefaultDeleteMode = "remove"

	// DefaultOSQuerySocket is the extension socket of a system osqueryd.
	DefaultOSQuerySocket = "/var/osquery/osquery.em"

	// DefaultOSQueryTimeout bounds opening the osquery extension socket.
	DefaultOSQueryTimeout = 10 * time.Second

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/reap"
)

// DefaultTargets is used whenever the configured target set is empty.
var DefaultTargets = []string{"diff_result.html"}

// Supported values for search.backend.
var SearchBackends = []string{"walk", "find", "osquery"}

// Supported values for delete.mode.
var DeleteModes = []string{"remove", "trash"}
