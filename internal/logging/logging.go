// Package logging provides structured logging with zap.
//
// The shell owns the terminal, so logs go to stderr at warn level unless
// configured otherwise.
package logging

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey struct{}

var (
	globalLogger *zap.Logger
	globalLevel  = zap.NewAtomicLevelAt(zapcore.WarnLevel)
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // console, json
	OutputPath string // stderr (default), stdout, or file path
}

// Init builds the global logger. An unknown level falls back to warn.
func Init(cfg Config) error {
	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zapcore.WarnLevel
		}
	}
	globalLevel.SetLevel(level)

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Level = globalLevel
	output := cfg.OutputPath
	if output == "" {
		output = "stderr"
	}
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

func initDefault() {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), globalLevel)
	globalLogger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// Replace swaps the global logger and returns a func restoring the old one.
func Replace(logger *zap.Logger) (restore func()) {
	prev := globalLogger
	globalLogger = logger
	return func() { globalLogger = prev }
}

// Sync flushes any buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	if globalLogger == nil {
		initDefault()
	}
	return globalLogger
}

// WithContext returns the logger stored in ctx, or the global logger.
func WithContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
		return logger
	}
	return L()
}

// WithCommand tags every line logged under ctx with the shell command.
func WithCommand(ctx context.Context, command string) context.Context {
	logger := WithContext(ctx).With(zap.String("command", command))
	return context.WithValue(ctx, contextKey{}, logger)
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

// Field helpers.
func String(key, val string) zap.Field { return zap.String(key, val) }

func Int(key string, val int) zap.Field { return zap.Int(key, val) }

func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }

func Err(err error) zap.Field { return zap.Error(err) }

func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }
