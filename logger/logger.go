// Package logger provides structured logging for the client core. The API
// mirrors the leveled, field-chaining style used across the codebase while
// delegating encoding and output to zap.
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, structured logging.
type Logger struct {
	s *zap.SugaredLogger
}

var (
	globalLogger *Logger
	once         sync.Once
)

// New creates a logger writing JSON to stderr at the given level.
func New(level zapcore.Level) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return &Logger{s: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// Default returns the shared process-wide logger.
func Default() *Logger {
	once.Do(func() {
		if globalLogger == nil {
			globalLogger = New(zapcore.InfoLevel)
		}
	})
	return globalLogger
}

// WithField returns a logger with an additional structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{s: l.s.With(key, value)}
}

// WithFields returns a logger with additional structured fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{s: l.s.With(args...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) { l.s.Debug(msg) }

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string) { l.s.Info(msg) }

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) { l.s.Infof(format, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string) { l.s.Warn(msg) }

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) { l.s.Warnf(format, args...) }

// Error logs an error message with its cause.
func (l *Logger) Error(msg string, err error) {
	if err != nil {
		l.s.Errorw(msg, "error", err.Error())
		return
	}
	l.s.Error(msg)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }

// Sync flushes buffered log entries.
func (l *Logger) Sync() error { return l.s.Sync() }

// ParseLevel parses a string log level.
func ParseLevel(levelStr string) (zapcore.Level, error) {
	switch levelStr {
	case "DEBUG", "debug":
		return zapcore.DebugLevel, nil
	case "INFO", "info", "":
		return zapcore.InfoLevel, nil
	case "WARN", "warn", "WARNING", "warning":
		return zapcore.WarnLevel, nil
	case "ERROR", "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", levelStr)
	}
}
