// Package logging provides the process-wide structured logger.
//
// All packages log through the package-level helpers (Infof, Warnf, ...)
// so that call sites stay terse and the backing zap logger can be swapped
// or reconfigured in one place.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.Must(zap.NewProduction()).Sugar()
)

// InitLoggerFromEnv initializes the global logger from environment variables.
// MODGUARD_LOG_LEVEL selects the level (debug, info, warn, error; default
// info) and MODGUARD_LOG_FORMAT selects the encoding (json or console;
// default json). Returns the underlying zap logger for callers that need it.
func InitLoggerFromEnv() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if raw := os.Getenv("MODGUARD_LOG_LEVEL"); raw != "" {
		if err := level.Set(strings.ToLower(raw)); err != nil {
			return nil, err
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if strings.EqualFold(os.Getenv("MODGUARD_LOG_FORMAT"), "console") {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	mu.Lock()
	logger = built.Sugar()
	mu.Unlock()
	return built, nil
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) { get().Infof(format, args...) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) { get().Warnf(format, args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }

// Fatalf logs a formatted message at fatal level and exits.
func Fatalf(format string, args ...interface{}) { get().Fatalf(format, args...) }

// LogEvent emits a structured event record with arbitrary fields.
func LogEvent(event string, fields map[string]interface{}) {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	get().Infow(event, kv...)
}

// Sync flushes any buffered log entries.
func Sync() error {
	return get().Sync()
}
