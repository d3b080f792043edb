package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
}

// zapLogger wraps a *zap.SugaredLogger and implements Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// Ensure zapLogger satisfies Logger.
var _ Logger = (*zapLogger)(nil)

// Debug logs at DebugLevel. keysAndValues are alternating key/value pairs.
func (l *zapLogger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs at InfoLevel.
func (l *zapLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs at WarnLevel.
func (l *zapLogger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs at ErrorLevel.
func (l *zapLogger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// With returns a child Logger that always carries keysAndValues.
func (l *zapLogger) With(keysAndValues ...any) Logger {
	return &zapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// ----------------------------------------------------------------------------
// globalSugar holds the SugaredLogger for easy global use.
var globalSugar = zap.NewNop().Sugar()

// Init creates a Zap logger at the given level ("debug", "info", "warn",
// "error"), wraps it, and returns the Logger interface.
// Call this once at startup.
func Init(level string) (Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true

	zapLog, err := cfg.Build(
		zap.AddCaller(),      // include file:line
		zap.AddCallerSkip(1), // skip the wrapper frame
	)
	if err != nil {
		return nil, err
	}

	sugar := zapLog.Sugar()
	globalSugar = sugar

	return &zapLogger{sugar: sugar}, nil
}

// New wraps an existing zap logger. Tests pass zaptest/observer cores here.
func New(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

// Cleanup flushes any buffered log entries. Call at program exit.
func Cleanup() {
	_ = globalSugar.Sync()
}

// Global returns the Logger created by Init(), or a no-op logger before Init.
func Global() Logger {
	return &zapLogger{sugar: globalSugar}
}
