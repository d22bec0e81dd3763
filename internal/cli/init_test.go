package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FINBOARD_CLI_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("FINBOARD_CLI_TEST") })

	LoadEnvFile(path)
	if got := os.Getenv("FINBOARD_CLI_TEST"); got != "from-file" {
		t.Errorf("FINBOARD_CLI_TEST = %q, want from-file", got)
	}

	// missing files are ignored
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("test", &config.Config{LogLevel: "debug", LogFormat: "json"})
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	if slog.Default() != logger {
		t.Error("logger should be installed as default")
	}

	logger = SetupLogger("test", nil)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("nil config should default to info")
	}
}

func TestRunCleanupTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	start := time.Now()
	runCleanup(logger, 20*time.Millisecond, func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(time.Second)
	})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("runCleanup waited %v past its timeout", elapsed)
	}

	called := false
	runCleanup(logger, time.Second, func(context.Context) { called = true })
	if !called {
		t.Error("cleanup not called")
	}
	runCleanup(logger, time.Second, nil)
}
