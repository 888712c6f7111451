package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is a zerolog.Logger that remembers its level and sink so that
// derived loggers and DetachConsole can rebuild it
type Logger struct {
	zerolog.Logger
	level  zerolog.Level
	output io.Writer
}

// Config selects the level and sink of the global logger. It is part of
// the TOML dump printed by `histpick config`.
type Config struct {
	// trace, debug, info, warn, error or disabled
	Level string `toml:"level"`

	// "stderr", "stdout" or a file path
	Output string `toml:"output"`

	// Human readable colored lines on the console
	Color bool `toml:"color"`

	Timestamp bool `toml:"timestamp"`

	// Annotate entries with file:line
	Caller bool `toml:"caller"`
}

// DefaultConfig logs errors only, to stderr
func DefaultConfig() *Config {
	return &Config{
		Level:     "error",
		Output:    "stderr",
		Color:     true,
		Timestamp: true,
	}
}

var (
	globalLogger *Logger
	globalConfig *Config
)

// Init replaces the global logger, and zerolog's, with one built from cfg
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("unknown log level %q: %w", cfg.Level, err)
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	setGlobal(New(sink, level, cfg), cfg)
	return nil
}

// openSink resolves an Output value. Log files are appended to and their
// directory is created on demand.
func openSink(dest string) (io.Writer, error) {
	switch {
	case dest == "stdout":
		return os.Stdout, nil
	case isConsole(dest):
		return os.Stderr, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", dest, err)
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", dest, err)
	}
	return f, nil
}

// New builds a logger writing to output without touching the global one
func New(output io.Writer, level zerolog.Level, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if isConsole(cfg.Output) && cfg.Color {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(output).Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	return &Logger{Logger: ctx.Logger(), level: level, output: output}
}

// DetachConsole silences a global logger that writes to the terminal, for
// as long as something else owns the screen. File loggers are left alone.
// The returned function reinstates the previous logger.
func DetachConsole() (restore func()) {
	prev, prevConfig := GetLogger(), globalConfig
	if !isConsole(prevConfig.Output) {
		return func() {}
	}

	quiet := *prevConfig
	quiet.Color = false
	setGlobal(New(io.Discard, prev.level, &quiet), prevConfig)

	return func() { setGlobal(prev, prevConfig) }
}

func isConsole(output string) bool {
	return output == "stderr" || output == "stdout" || output == ""
}

func setGlobal(l *Logger, cfg *Config) {
	globalLogger, globalConfig = l, cfg
	log.Logger = l.Logger
}

// GetLogger returns the global logger, creating a default one on first use
func GetLogger() *Logger {
	if globalLogger == nil {
		_ = Init(nil)
	}
	return globalLogger
}

func (l *Logger) derive(ctx zerolog.Context) *Logger {
	return &Logger{Logger: ctx.Logger(), level: l.level, output: l.output}
}

// WithField returns a child logger carrying key
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.derive(l.Logger.With().Interface(key, value))
}

// WithFields returns a child logger carrying every entry of fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.Logger.With().Fields(fields))
}

// WithError returns a child logger carrying err
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.Logger.With().Err(err))
}

// WithComponent names the part of histpick an entry comes from
func (l *Logger) WithComponent(component string) *Logger {
	return l.derive(l.Logger.With().Str("component", component))
}

// WithSessionID tags every entry of one picker run
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return l.derive(l.Logger.With().Str("session_id", sessionID))
}

func (l *Logger) History() *Logger  { return l.WithComponent("history") }
func (l *Logger) TUI() *Logger      { return l.WithComponent("tui") }
func (l *Logger) Terminal() *Logger { return l.WithComponent("terminal") }
func (l *Logger) Config() *Logger   { return l.WithComponent("config") }

// Performance records at debug level how long operation took
func (l *Logger) Performance(operation string, took time.Duration, fields map[string]interface{}) {
	l.Debug().
		Str("operation", operation).
		Dur("duration", took).
		Fields(fields).
		Msg("performance metric")
}

func Error() *zerolog.Event {
	return GetLogger().Error()
}

func WithError(err error) *Logger {
	return GetLogger().WithError(err)
}
