// Package logging provides the log sink for reap: per-component
// charmbracelet/log loggers writing timestamped lines to a rotating file
// and, optionally, to stderr.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info", ConsoleLevel: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	log := logging.Get("scanner")
//	log.Info("scan started", "root", "/home/user")
//
// Loggers obtained before Init write to io.Discard, so library code can log
// unconditionally.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levels = [...]struct {
	name  string
	charm log.Level
}{
	LevelDebug: {"debug", log.DebugLevel},
	LevelInfo:  {"info", log.InfoLevel},
	LevelWarn:  {"warn", log.WarnLevel},
	LevelError: {"error", log.ErrorLevel},
}

// String returns the string representation of the level.
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "unknown"
	}
	return levels[l].name
}

func (l Level) charm() log.Level {
	if l < LevelDebug || l > LevelError {
		return log.InfoLevel
	}
	return levels[l].charm
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level name. Empty means info; "warning" is accepted
// for warn.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for l, def := range levels {
		if def.name == name {
			return Level(l), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config configures the logging system.
type Config struct {
	// Level is the default file log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to their log levels.
	Components map[string]string

	// ConsoleLevel enables stderr output at the given level.
	// Empty disables console output.
	ConsoleLevel string

	// Console overrides the console destination (stderr when nil).
	Console io.Writer
}

// Logger is a component logger. Every call writes one line to the file
// sink and, when enabled, one line to the console.
type Logger struct {
	component string
	sinks     []*log.Logger
}

func (l *Logger) emit(level log.Level, msg string, args []interface{}) {
	for _, sink := range l.sinks {
		sink.Log(level, msg, args...)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.emit(log.DebugLevel, msg, args) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.emit(log.InfoLevel, msg, args) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.emit(log.WarnLevel, msg, args) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.emit(log.ErrorLevel, msg, args) }

// With returns a logger that adds key/value context to every line.
func (l *Logger) With(args ...interface{}) *Logger {
	child := &Logger{component: l.component, sinks: make([]*log.Logger, len(l.sinks))}
	for i, sink := range l.sinks {
		child.sinks[i] = sink.With(args...)
	}
	return child
}

// Component returns the component name the logger was created for.
func (l *Logger) Component() string {
	return l.component
}

// sink is the process-wide logging configuration.
type sink struct {
	mu         sync.RWMutex
	writer     *RotatingWriter // nil until Init
	level      Level
	components map[string]Level
	loggers    map[string]*Logger

	console      io.Writer // nil when console output is disabled
	consoleLevel Level
}

var global = &sink{
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

// Init initializes the logging system. Calling Init again replaces the
// previous configuration; loggers already handed out keep writing to the
// old sink, so components should call Get at use sites.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	var (
		console      io.Writer
		consoleLevel Level
	)
	if cfg.ConsoleLevel != "" {
		if consoleLevel, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		console = cfg.Console
		if console == nil {
			console = os.Stderr
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.writer != nil {
		_ = global.writer.Close()
	}
	global.writer = writer
	global.level = level
	global.components = components
	global.console = console
	global.consoleLevel = consoleLevel
	global.loggers = make(map[string]*Logger)

	return nil
}

// Get returns the logger for the given component, creating it on first use.
func Get(component string) *Logger {
	global.mu.RLock()
	logger, ok := global.loggers[component]
	global.mu.RUnlock()
	if ok {
		return logger
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if logger, ok := global.loggers[component]; ok {
		return logger
	}
	logger = global.newLogger(component)
	global.loggers[component] = logger
	return logger
}

// newLogger must be called with s.mu held.
func (s *sink) newLogger(component string) *Logger {
	level := s.level
	if compLevel, ok := s.components[component]; ok {
		level = compLevel
	}

	if s.writer == nil {
		return &Logger{component: component}
	}

	logger := &Logger{component: component}
	logger.sinks = append(logger.sinks, log.NewWithOptions(s.writer, log.Options{
		Level:           level.charm(),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	}))

	if s.console != nil {
		// A component turned up to debug also shows debug on the console.
		consoleLevel := min(s.consoleLevel, level)
		logger.sinks = append(logger.sinks, log.NewWithOptions(s.console, log.Options{
			Level:           consoleLevel.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Prefix:          component,
		}))
	}

	return logger
}

// Close flushes and closes the log file. Loggers obtained afterwards
// discard their output.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.writer == nil {
		return nil
	}

	var err error
	if cerr := global.writer.Close(); cerr != nil {
		err = fmt.Errorf("closing log writer: %w", cerr)
	}
	global.writer = nil
	global.console = nil
	global.loggers = make(map[string]*Logger)
	global.components = make(map[string]Level)

	return err
}

// Path returns the active log file, or "" before Init.
func Path() string {
	global.mu.RLock()
	defer global.mu.RUnlock()

	if global.writer == nil {
		return ""
	}
	return global.writer.Path()
}

// DefaultLogPath returns $XDG_STATE_HOME/reap/reap.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "reap", "reap.log")
}
