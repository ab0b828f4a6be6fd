package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package logger exposes leveled printf-style logging for the whole
// engine, backed by zap. Tests can swap in a silent logger.

// LogLevel represents log severity levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu      sync.RWMutex
	sugar   *zap.SugaredLogger
	atLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = atLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	sugar = l.Sugar()
}

// SetLevel sets the minimum log level.
func SetLevel(level LogLevel) {
	switch level {
	case LevelDebug:
		atLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		atLevel.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		atLevel.SetLevel(zapcore.WarnLevel)
	case LevelError:
		atLevel.SetLevel(zapcore.ErrorLevel)
	}
}

// Disable silences all output (useful in tests).
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	sugar = zap.NewNop().Sugar()
}

// Replace swaps the underlying logger.
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = l.Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	current().Infof(format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	current().Errorf(format, args...)
}
