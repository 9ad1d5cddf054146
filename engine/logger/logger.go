// Package logger holds the process-wide structured logger.
//
// Components accept a *zap.Logger through their builder options and default to a no-op
// logger, so packages stay silent in tests. The playground binaries call Init once at
// startup and hand L() to everything they construct.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	global *zap.Logger
	sugar  *zap.SugaredLogger
)

// Init builds the global logger from the logger.* keys of cfg.
//
// Parameters:
//   - name: the application name, used as the log file base name
//   - cfg: configuration holding the logger.* keys
//
// Returns:
//   - error: an error if the log directory cannot be created
func Init(name string, cfg *viper.Viper) error {
	l, err := New(name, cfg)
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set replaces the global logger. A nil logger restores the unset fallback.
//
// Parameters:
//   - l: the logger to install
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
	if l == nil {
		sugar = nil
		return
	}
	sugar = l.Sugar()
}

// L returns the global logger, or a no-op logger before Init.
//
// Returns:
//   - *zap.Logger: the logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// Sync flushes buffered entries of the global logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if global != nil {
		_ = global.Sync()
	}
}

// New builds a logger from the logger.* keys of cfg without installing it.
//
// Keys: logger.level (debug|info|warn|error), logger.format (console|json), logger.stdout,
// logger.dir (empty disables the file sink), logger.rotation, logger.maxsize,
// logger.maxage, logger.maxbackups, logger.localtime, logger.compress.
//
// Parameters:
//   - name: the application name, used as the log file base name
//   - cfg: configuration holding the logger.* keys
//
// Returns:
//   - *zap.Logger: the configured logger
//   - error: an error if the log directory or file cannot be opened
func New(name string, cfg *viper.Viper) (*zap.Logger, error) {
	level := ParseLevel(cfg.GetString("logger.level"))
	encoder := newEncoder(cfg.GetString("logger.format"))

	var cores []zapcore.Core
	if cfg.GetBool("logger.stdout") {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}

	if dir := cfg.GetString("logger.dir"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logger: create directory %s: %w", dir, err)
		}
		file := filepath.Join(dir, name+".log")
		sink, err := fileSink(cfg, file)
		if err != nil {
			return nil, err
		}
		// Files always get JSON so they stay machine readable.
		cores = append(cores, zapcore.NewCore(newEncoder("json"), sink, level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel), zap.AddCaller()}
	return zap.New(zapcore.NewTee(cores...), options...).Named(name), nil
}

// ParseLevel maps a level name to a zap level. Unknown names yield info.
//
// Parameters:
//   - level: the level name, case-insensitive
//
// Returns:
//   - zapcore.Level: the parsed level
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func fileSink(cfg *viper.Viper, file string) (zapcore.WriteSyncer, error) {
	if cfg.GetBool("logger.rotation") {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.GetInt("logger.maxsize"),
			MaxAge:     cfg.GetInt("logger.maxage"),
			MaxBackups: cfg.GetInt("logger.maxbackups"),
			LocalTime:  cfg.GetBool("logger.localtime"),
			Compress:   cfg.GetBool("logger.compress"),
		}), nil
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", file, err)
	}
	return zapcore.Lock(f), nil
}

func newEncoder(format string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if strings.ToLower(format) == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) {
	if s := current(); s != nil {
		s.Debugf(format, args...)
	}
}

// Infof logs a formatted info message, or prints it before Init.
func Infof(format string, args ...any) {
	if s := current(); s != nil {
		s.Infof(format, args...)
		return
	}
	fmt.Printf(format+"\n", args...)
}

// Warnf logs a formatted warning, or prints it before Init.
func Warnf(format string, args ...any) {
	if s := current(); s != nil {
		s.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Errorf logs a formatted error, or prints it before Init.
func Errorf(format string, args ...any) {
	if s := current(); s != nil {
		s.Errorf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Info logs a structured info message on the global logger.
func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

// Warn logs a structured warning on the global logger.
func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

// Error logs a structured error on the global logger.
func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}
