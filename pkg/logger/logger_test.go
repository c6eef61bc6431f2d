package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Init is safe to call again; the global stays usable.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}

	if err := Sync(); err != nil {
		t.Errorf("failed to sync logger: %v", err)
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "analysis started", String("job_id", "abc"), Int("samples", 16000))
	Get().Warn(ctx, "queue nearly full", Float64("utilization", 0.93))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("worker")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "job completed")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := []struct {
		in    string
		level slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, c := range cases {
		if err := SetLevelString(c.in); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", c.in, err)
		}
		if got := levelVar.Level(); got != c.level {
			t.Errorf("SetLevelString(%q) set level %v, want %v", c.in, got, c.level)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level string")
	}
}
