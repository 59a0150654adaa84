// Package logger provides structured logging using zap.
//
// Library packages take a *zap.Logger; only cmd/blockmesh touches the
// package-level Log.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger. It discards everything until Init is called.
var Log = zap.NewNop()

// Sugar is the sugared form of Log.
var Sugar = Log.Sugar()

// Rotation controls how lumberjack rolls the log file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps three compressed 20 MB files for two weeks.
var DefaultRotation = Rotation{MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 14, Compress: true}

// Options describe where log entries go. With no Console and no File every
// entry is dropped.
type Options struct {
	Level   string
	Console io.Writer // human-readable, colored
	File    string    // JSON lines, rotated
	Rotate  Rotation
	Fields  []zap.Field // attached to every entry
}

// New builds a logger from opts. The log file's directory is created if
// needed.
func New(opts Options) (*zap.Logger, error) {
	lvl := ParseLevel(opts.Level)

	var cores []zapcore.Core
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(consoleEncoder(), zapcore.Lock(zapcore.AddSync(opts.Console)), lvl))
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("logger: creating log directory: %w", err)
		}
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.Rotate.MaxSizeMB,
			MaxBackups: opts.Rotate.MaxBackups,
			MaxAge:     opts.Rotate.MaxAgeDays,
			Compress:   opts.Rotate.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(fileEncoder(), zapcore.AddSync(w), lvl))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.Fields(opts.Fields...)), nil
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Init sets the global logger to console output on stderr, so stdout stays
// free for bake reports, plus logFile when it is not empty.
func Init(level, logFile string) error {
	l, err := New(Options{
		Level:   level,
		Console: os.Stderr,
		File:    logFile,
		Rotate:  DefaultRotation,
	})
	if err != nil {
		return err
	}
	Use(l)
	return nil
}

// Use replaces the global logger.
func Use(l *zap.Logger) {
	Log = l
	Sugar = l.Sugar()
}

// Nop resets the global logger to discard everything.
func Nop() { Use(zap.NewNop()) }

// ParseLevel converts a level name to a zapcore.Level. Unknown names map
// to info.
func ParseLevel(level string) zapcore.Level {
	s := strings.ToLower(strings.TrimSpace(level))
	if s == "warning" {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return l
}

// Named returns a child of the global logger.
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
