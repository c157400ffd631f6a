package logger

import (
	"io"
	"os"
	"syscall"
	"time"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the logger with the given level name
func Init(level string, isService bool) error {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if isService {
		// procd and syslog stamp lines themselves
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	return SetLevel(level)
}

// SetLevel sets the global log level from its configuration name
func SetLevel(level string) error {
	switch level {
	case "debug":
		SetLogLevel(DebugLevel)
	case "info", "":
		SetLogLevel(InfoLevel)
	case "warning", "warn":
		SetLogLevel(WarnLevel)
	case "error":
		SetLogLevel(ErrorLevel)
	default:
		return errors.New().WithData(errors.ErrInvalidLogLevel, level)
	}

	return nil
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(log.Error(), err)
}

// FatalWithCode logs a fatal message with a specific error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return withCode(log.Fatal(), err)
}

func withCode(ev *zerolog.Event, err errors.Error) *LogEvent {
	return &LogEvent{ev.
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// componentLogger is the injectable Logger used by the daemon's components.
type componentLogger struct {
	l *zerolog.Logger
}

// New returns a Logger tagged with the given component name that writes
// through the package logger.
func New(component string) Logger {
	l := log.With().Str("component", component).Logger()
	return &componentLogger{l: &l}
}

// NewWithWriter returns a Logger writing JSON lines to w, mostly for tests.
func NewWithWriter(w io.Writer) Logger {
	l := zerolog.New(w).With().Timestamp().Logger()
	return &componentLogger{l: &l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	l := zerolog.Nop()
	return &componentLogger{l: &l}
}

func (c *componentLogger) Debug() *LogEvent {
	return &LogEvent{c.l.Debug()}
}

func (c *componentLogger) Info() *LogEvent {
	return &LogEvent{c.l.Info()}
}

func (c *componentLogger) Warn() *LogEvent {
	return &LogEvent{c.l.Warn()}
}

func (c *componentLogger) Error() *LogEvent {
	return &LogEvent{c.l.Error()}
}

func (c *componentLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(c.l.Error(), err)
}

func (c *componentLogger) ErrorWithContext(err error, component, operation string) *LogEvent {
	return &LogEvent{c.l.Error().
		Str("error_code", string(errors.CodeOf(err))).
		Str("source", component).
		Str("operation", operation).
		Err(err)}
}

func (c *componentLogger) With(component string) Logger {
	l := c.l.With().Str("component", component).Logger()
	return &componentLogger{l: &l}
}
