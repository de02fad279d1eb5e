// Package adapters bridges external logging libraries to the f451-comms
// logger interface.
package adapters

import (
	"github.com/rs/zerolog"

	"github.com/mlanser/f451-comms/pkg/logger"
)

// AdapterBase provides level bookkeeping shared by all adapters.
type AdapterBase struct {
	level logger.LogLevel
}

// NewAdapterBase creates a new adapter base at the given level.
func NewAdapterBase(level logger.LogLevel) *AdapterBase {
	return &AdapterBase{level: level}
}

// ShouldLog reports whether a message at the given level should be emitted.
func (a *AdapterBase) ShouldLog(level logger.LogLevel) bool {
	return a.level >= level
}

// Level returns the current log level.
func (a *AdapterBase) Level() logger.LogLevel {
	return a.level
}

// LogFunc is a function signature adapting any plain logging function.
type LogFunc func(level string, msg string, keyvals ...any)

// FuncAdapter adapts a plain function to the logger interface.
type FuncAdapter struct {
	*AdapterBase
	logFunc LogFunc
}

// NewFuncAdapter creates an adapter around a logging function.
func NewFuncAdapter(logFunc LogFunc, level logger.LogLevel) logger.Logger {
	return &FuncAdapter{
		AdapterBase: NewAdapterBase(level),
		logFunc:     logFunc,
	}
}

// LogMode returns a copy of the adapter with the given level.
func (f *FuncAdapter) LogMode(level logger.LogLevel) logger.Logger {
	return &FuncAdapter{
		AdapterBase: NewAdapterBase(level),
		logFunc:     f.logFunc,
	}
}

func (f *FuncAdapter) Info(msg string, args ...any) {
	if f.ShouldLog(logger.Info) {
		f.logFunc("info", msg, args...)
	}
}

func (f *FuncAdapter) Warn(msg string, args ...any) {
	if f.ShouldLog(logger.Warn) {
		f.logFunc("warn", msg, args...)
	}
}

func (f *FuncAdapter) Error(msg string, args ...any) {
	if f.ShouldLog(logger.Error) {
		f.logFunc("error", msg, args...)
	}
}

func (f *FuncAdapter) Debug(msg string, args ...any) {
	if f.ShouldLog(logger.Debug) {
		f.logFunc("debug", msg, args...)
	}
}

// ZerologAdapter adapts a zerolog.Logger to the logger interface.
type ZerologAdapter struct {
	*AdapterBase
	logger zerolog.Logger
}

// NewZerologAdapter creates an adapter around a zerolog logger.
func NewZerologAdapter(zl zerolog.Logger, level logger.LogLevel) logger.Logger {
	return &ZerologAdapter{
		AdapterBase: NewAdapterBase(level),
		logger:      zl,
	}
}

// LogMode returns a copy of the adapter with the given level.
func (z *ZerologAdapter) LogMode(level logger.LogLevel) logger.Logger {
	return &ZerologAdapter{
		AdapterBase: NewAdapterBase(level),
		logger:      z.logger,
	}
}

func (z *ZerologAdapter) Info(msg string, args ...any) {
	if z.ShouldLog(logger.Info) {
		z.emit(z.logger.Info(), msg, args...)
	}
}

func (z *ZerologAdapter) Warn(msg string, args ...any) {
	if z.ShouldLog(logger.Warn) {
		z.emit(z.logger.Warn(), msg, args...)
	}
}

func (z *ZerologAdapter) Error(msg string, args ...any) {
	if z.ShouldLog(logger.Error) {
		z.emit(z.logger.Error(), msg, args...)
	}
}

func (z *ZerologAdapter) Debug(msg string, args ...any) {
	if z.ShouldLog(logger.Debug) {
		z.emit(z.logger.Debug(), msg, args...)
	}
}

func (z *ZerologAdapter) emit(ev *zerolog.Event, msg string, args ...any) {
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			ev = ev.Interface(key, args[i+1])
		}
	}
	ev.Msg(msg)
}
