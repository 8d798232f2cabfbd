// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevel()
	once  sync.Once
)

// Init builds the process logger once. "production" logs JSON from info up,
// "test" discards everything, anything else logs to the console from debug up.
func Init(env string) {
	once.Do(func() {
		var (
			cfg  zap.Config
			base *zap.Logger
			err  error
		)

		switch env {
		case "test":
			base = zap.NewNop()
		case "production":
			cfg = zap.NewProductionConfig()
		default:
			cfg = zap.NewDevelopmentConfig()
		}

		if base == nil {
			level.SetLevel(cfg.Level.Level())
			cfg.Level = level
			base, err = cfg.Build()
			if err != nil {
				base = zap.NewNop()
			}
		}

		sugar = base.Sugar().Named("fintrack")
	})
}

// SetLevel changes the minimum level at runtime ("debug", "info", "warn", "error").
func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Level returns the current minimum level.
func Level() zapcore.Level {
	return level.Level()
}

// Get returns the global sugared logger, initialising a development logger
// when Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// With returns a child logger carrying the given key/value pairs.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return Get().With(keysAndValues...)
}

// Sync flushes buffered entries.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
