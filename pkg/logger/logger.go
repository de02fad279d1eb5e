// Package logger provides the leveled, structured logging interface used
// across f451-comms. The interface follows the GORM logger design: a small
// set of level methods taking a message plus key-value pairs, with pluggable
// backends (see the adapters subpackage).
package logger

import (
	"fmt"
	"log"
	"os"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// Silent suppresses all log output.
	Silent LogLevel = iota + 1
	// Error only logs error messages.
	Error
	// Warn logs warnings and errors.
	Warn
	// Info logs informational messages, warnings, and errors.
	Info
	// Debug logs all messages including debug information.
	Debug
)

// Logger is the logging interface accepted by the dispatcher and every
// channel provider. Implementations must be safe for concurrent use.
type Logger interface {
	// LogMode returns a copy of the logger with the given level.
	LogMode(level LogLevel) Logger
	// Info logs an informational message with key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning message with key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error message with key-value pairs.
	Error(msg string, args ...any)
	// Debug logs a debug message with key-value pairs.
	Debug(msg string, args ...any)
}

// StandardLogger is the default Logger implementation on top of the
// standard library log package.
type StandardLogger struct {
	logger *log.Logger
	level  LogLevel
	prefix string
}

// NewStandardLogger creates a logger writing to the given standard logger.
func NewStandardLogger(writer *log.Logger, level LogLevel, prefix string) Logger {
	return &StandardLogger{
		logger: writer,
		level:  level,
		prefix: prefix,
	}
}

// LogMode returns a copy of the logger with the given level.
func (l *StandardLogger) LogMode(level LogLevel) Logger {
	newLogger := *l
	newLogger.level = level
	return &newLogger
}

// Info logs an informational message.
func (l *StandardLogger) Info(msg string, args ...any) {
	if l.level >= Info {
		l.logger.Print(l.formatLog("INFO", msg, args...))
	}
}

// Warn logs a warning message.
func (l *StandardLogger) Warn(msg string, args ...any) {
	if l.level >= Warn {
		l.logger.Print(l.formatLog("WARN", msg, args...))
	}
}

// Error logs an error message.
func (l *StandardLogger) Error(msg string, args ...any) {
	if l.level >= Error {
		l.logger.Print(l.formatLog("ERROR", msg, args...))
	}
}

// Debug logs a debug message.
func (l *StandardLogger) Debug(msg string, args ...any) {
	if l.level >= Debug {
		l.logger.Print(l.formatLog("DEBUG", msg, args...))
	}
}

func (l *StandardLogger) formatLog(level, msg string, args ...any) string {
	formatted := fmt.Sprintf("%s [%s] %s", l.prefix, level, msg)
	if len(args) == 0 {
		return formatted
	}
	fields := ""
	for i := 0; i < len(args); i += 2 {
		key := args[i]
		var val any = "(no value)"
		if i+1 < len(args) {
			val = args[i+1]
		}
		fields += fmt.Sprintf(" %v=%v", key, val)
	}
	return formatted + fields
}

// discardLogger drops all output.
type discardLogger struct{}

func (d *discardLogger) LogMode(LogLevel) Logger { return d }
func (d *discardLogger) Info(string, ...any)     {}
func (d *discardLogger) Warn(string, ...any)     {}
func (d *discardLogger) Error(string, ...any)    {}
func (d *discardLogger) Debug(string, ...any)    {}

// Discard is a logger that discards all output.
var Discard Logger = &discardLogger{}

// New returns the default logger writing to stdout at Warn level.
func New() Logger {
	return NewStandardLogger(log.New(os.Stdout, "", log.LstdFlags), Warn, "[f451-comms]")
}
