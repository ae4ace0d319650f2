package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init is called so
// library code and tests can log unconditionally.
var Log = zap.NewNop()

// Init installs a development logger at debug level.
func Init() {
	InitWithLevel("debug")
}

// InitWithLevel installs a console logger at the given level ("debug",
// "info", "warn", "error"). Unknown levels fall back to info.
func InitWithLevel(level string) {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		Log = zap.NewExample()
		Log.Error("Falling back to example logger", zap.Error(err))
		return
	}
	Log = l
}

// Set replaces the global logger, mostly for tests that want an observer core.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
