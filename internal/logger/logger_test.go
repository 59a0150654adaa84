package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.InfoLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultIsNop(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("package loggers must never be nil")
	}
	Log.Info("dropped")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bake.log")
	l, err := New(Options{Level: "warn", File: path, Rotate: DefaultRotation})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	Use(l)
	t.Cleanup(Nop)

	Named("bake").Info("filtered out")
	Named("bake").Warn("kept", zap.String("model", "notched"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "filtered out") {
		t.Error("info entry written at warn level")
	}
	for _, want := range []string{`"msg":"kept"`, `"model":"notched"`, `"logger":"bake"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestConsoleOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{
		Level:   "debug",
		Console: &buf,
		Fields:  []zap.Field{zap.Int("worker", 3)},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("baked", zap.String("job", "slab.lisp"))
	_ = l.Sync()

	out := buf.String()
	for _, want := range []string{"baked", `"worker": 3`, `"job": "slab.lisp"`} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %s:\n%s", want, out)
		}
	}
}

func TestNewWithoutOutputsDrops(t *testing.T) {
	l, err := New(Options{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger with no outputs should be disabled")
	}
}

func TestNewBadLogDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Options{File: filepath.Join(blocker, "x.log")}); err == nil {
		t.Fatal("expected an error when the log directory cannot be created")
	}
}
