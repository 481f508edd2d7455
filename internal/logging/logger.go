package logging

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is swapped atomically; the poller and command callers log from
// their own goroutines.
var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "HOMEDASH_LOG_LEVEL"

// Options controls where and how verbosely the global logger writes.
type Options struct {
	// Level is one of debug/info/warn/error. Empty falls back to
	// HOMEDASH_LOG_LEVEL, and if that is empty too the logger is silent.
	Level string

	// File redirects output away from stdout. The TUI sets this because
	// zap writing to the terminal would tear the rendered frame.
	File string
}

// Initialize replaces the global logger according to opts.
func Initialize(opts Options) error {
	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger.Store(zap.NewNop())
		return nil
	}

	output := "stdout"
	if opts.File != "" {
		output = opts.File
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if opts.File == "" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Store(built)

	return nil
}

// ParseLevel maps a level name onto a zap level. Unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger installs l as the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return logger.Load()
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogPoll records the outcome of one status fetch.
func LogPoll(reason string, elapsed time.Duration, err error) {
	if err != nil {
		Warn("Status poll failed",
			zap.String("reason", reason),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	Debug("Status poll completed",
		zap.String("reason", reason),
		zap.Duration("elapsed", elapsed),
	)
}

// LogPollSkipped records a tick dropped because a fetch was still pending.
func LogPollSkipped(reason string) {
	Debug("Status poll skipped, previous fetch still in flight",
		zap.String("reason", reason),
	)
}

// LogCommand records the outcome of one control request.
func LogCommand(requestID string, action string, path string, err error) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("action", action),
		zap.String("path", path),
	}
	if err != nil {
		Error("Command failed", append(fields, zap.Error(err))...)
		return
	}
	Info("Command sent", fields...)
}

// LogPinKey records one keypad submission of a PIN sequence. The key itself
// is never logged.
func LogPinKey(index int, total int, err error) {
	fields := []zap.Field{
		zap.Int("index", index),
		zap.Int("total", total),
	}
	if err != nil {
		Warn("PIN entry aborted", append(fields, zap.Error(err))...)
		return
	}
	Debug("PIN key accepted", fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = GetLogger().Sync()
}
