package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logging for the assistant core. Components log through
// Debugf/Infof/Warnf/Errorf; tests can lower the level or swap the backend
// with SetLogger.

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	log   = newDefault()
)

func newDefault() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetLogger replaces the backing logger. Pass zap.NewNop() in tests that
// need silence.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l.Sugar()
	mu.Unlock()
}

// SetLevel adjusts the minimum level of the default logger.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return log.Sync()
}

func Debugf(format string, args ...interface{}) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Errorf(format, args...)
}
