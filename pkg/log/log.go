// Package log provides structured logging for minwls on top of zerolog.
//
// Library code logs through the Logger interface with alternating key/value
// pairs, using the shared keys defined in this package so that every
// component emits the same field names:
//
//	logger := log.GetLoggerWithName("wls").With(log.ComponentKey, "linear")
//	logger.Debug("Fit completed", log.MethodKey, "qr", log.ScaleKey, 0.25)
//
// Applications configure the process-wide logger once with SetupLogger and
// may use the underlying zerolog logger directly through GetLogger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Common field keys.
const (
	ModelNameKey   = "model_name"
	ComponentKey   = "component"
	OperationKey   = "operation"
	PhaseKey       = "phase"
	SamplesKey     = "n_samples"
	FeaturesKey    = "n_features"
	PredsKey       = "n_predictions"
	DurationMsKey  = "duration_ms"
	MethodKey      = "method"
	IterationKey   = "iteration"
	ScaleKey       = "scale"
	CriterionKey   = "criterion"
	ConvergedKey   = "converged"
	LoggerNameKey  = "logger"
	ErrorDetailKey = "error_detail"
)

// Operation and phase values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationSolve   = "solve"

	PhaseTraining  = "training"
	PhaseInference = "inference"
	PhaseIteration = "iteration"
)

// Level is a logging severity.
type Level int8

// Log levels, mirroring zerolog's.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	Disabled
)

// ToLogLevel parses a level name. Unknown names map to InfoLevel.
func ToLogLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error", "fatal":
		return ErrorLevel
	case "off", "disabled", "none":
		return Disabled
	default:
		return InfoLevel
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case Disabled:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger is the structured logger used by library code. fields are
// alternating string keys and values.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out named loggers sharing one sink and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

type zerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider returns a provider writing JSON lines to stderr.
func NewZerologProvider(level Level) LoggerProvider {
	return NewZerologProviderWithWriter(os.Stderr, level)
}

// NewZerologProviderWithWriter returns a provider writing JSON lines to w.
func NewZerologProviderWithWriter(w io.Writer, level Level) LoggerProvider {
	base := zerolog.New(w).With().Timestamp().Logger().Level(level.zerolog())
	return &zerologProvider{base: base}
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.base.With().Str(LoggerNameKey, name).Logger()}
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	p.base = p.base.Level(level.zerolog())
	p.mu.Unlock()
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...interface{}) {
	z.emit(z.l.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...interface{}) {
	z.emit(z.l.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...interface{}) {
	z.emit(z.l.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...interface{}) {
	z.emit(z.l.Error(), msg, fields)
}

func (z *zerologLogger) With(fields ...interface{}) Logger {
	if len(fields) == 0 {
		return z
	}
	return &zerologLogger{l: z.l.With().Fields(normalize(fields)).Logger()}
}

func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields []interface{}) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		e = e.Fields(normalize(fields))
	}
	e.Msg(msg)
}

// normalize makes fields acceptable to zerolog: a trailing key without a
// value gets an empty value, errors are stringified under their key.
func normalize(in []interface{}) []interface{} {
	fields := make([]interface{}, len(in), len(in)+1)
	copy(fields, in)
	if len(fields)%2 != 0 {
		fields = append(fields, "")
	}
	for i := 1; i < len(fields); i += 2 {
		if err, ok := fields[i].(error); ok && err != nil {
			fields[i] = err.Error()
		}
	}
	return fields
}

var (
	globalMu       sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(InfoLevel)
	globalZerolog                 = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// SetupLogger configures the process-wide logger with a human readable
// console writer on stderr.
func SetupLogger(level string) {
	lvl := ToLogLevel(level)
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalZerolog = zerolog.New(console).With().Timestamp().Logger().Level(lvl.zerolog())
	globalProvider = NewZerologProviderWithWriter(console, lvl)
}

// SetProvider replaces the provider behind GetLoggerWithName.
func SetProvider(p LoggerProvider) {
	globalMu.Lock()
	globalProvider = p
	globalMu.Unlock()
}

// GetLogger returns the process-wide zerolog logger.
func GetLogger() *zerolog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	l := globalZerolog
	return &l
}

// GetLoggerWithName returns a named Logger from the global provider.
func GetLoggerWithName(name string) Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLoggerWithName(name)
}

// LogError logs err at error level with the stack-carrying detail
// formatting of cockroachdb/errors attached.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	GetLogger().Error().Err(err).Str(ErrorDetailKey, fmt.Sprintf("%+v", err)).Msg(msg)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologLogger{l: zerolog.Nop()}
}
