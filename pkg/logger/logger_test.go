package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := InitWithWriter(&buf); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(func() { _ = Init() })
	return &buf
}

func TestInitAndGet(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if err := Sync(); err != nil {
		t.Errorf("sync: %v", err)
	}
	if err := InitWithWriter(nil); !errors.Is(err, ErrNilWriter) {
		t.Errorf("expected ErrNilWriter, got %v", err)
	}
}

func TestComponentAndSource(t *testing.T) {
	buf := captureLogger(t)
	ctx := context.Background()

	Named("service").Named("writer").Info(ctx, "calculation stored",
		String("game", "codm"), Float64("confidence", 0.6), Bool("gyro", true))

	out := buf.String()
	for _, want := range []string{
		"calculation stored",
		"component=service.writer",
		"game=codm",
		"confidence=0.6",
		"gyro=true",
		"source=logger_test.go:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestWithAttachesFields(t *testing.T) {
	buf := captureLogger(t)
	ctx := context.Background()

	l := Get().With(String("result_id", "r-1"), Duration("took", 2*time.Second))
	l.Warn(ctx, "slow write")
	l.Error(ctx, "write failed", Error(errors.New("disk full")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "result_id=r-1") || !strings.Contains(line, "took=2s") {
			t.Errorf("bound fields missing from %q", line)
		}
	}
	if !strings.Contains(lines[1], `error="disk full"`) {
		t.Errorf("error field missing from %q", lines[1])
	}
	if Get().With() != Get() {
		t.Error("With without fields should return the same logger")
	}
}

func TestLevels(t *testing.T) {
	buf := captureLogger(t)
	ctx := context.Background()

	Get().Debug(ctx, "hidden at info level")
	if strings.Contains(buf.String(), "hidden at info level") {
		t.Errorf("debug line leaked at info level: %q", buf.String())
	}

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
	}
	for _, tt := range tests {
		if err := SetLevelString(tt.in); err != nil {
			t.Fatalf("SetLevelString(%q): %v", tt.in, err)
		}
		if got := levelVar.Level(); got != tt.want {
			t.Errorf("SetLevelString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected unknown level to be rejected")
	}

	SetLevel(slog.LevelDebug)
	Get().Debug(ctx, "visible at debug level")
	if !strings.Contains(buf.String(), "visible at debug level") {
		t.Error("expected debug line after lowering the level")
	}
}
