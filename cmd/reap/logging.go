package main

import (
	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/logging"
)

// setupLogging initialises the log sink from cfg. --quiet silences the
// console; --verbose raises console and file to debug.
func setupLogging(cfg *config.Config) error {
	maxSize, err := logging.ParseMaxSize(cfg.Logging.Rotation.MaxSize)
	if err != nil {
		return err
	}

	consoleLevel := cfg.Logging.Console
	fileLevel := cfg.Logging.Level
	switch {
	case getQuiet():
		consoleLevel = ""
	case getVerbose():
		consoleLevel = "debug"
		fileLevel = "debug"
	}

	return logging.Init(logging.Config{
		Level: fileLevel,
		Path:  cfg.Logging.Path,
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			Daily:      cfg.Logging.Rotation.Daily,
		},
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	})
}
