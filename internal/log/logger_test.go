package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := setup(&buf, ComponentWorker, "warn", "json")
	l.Info("hidden")
	l.Warn("visible", FieldCount, 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "visible" || rec[FieldComponent] != ComponentWorker || rec[FieldCount] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}

	buf.Reset()
	slog.Warn("from default")
	if !strings.Contains(buf.String(), `"component":"worker"`) {
		t.Errorf("default logger missing component: %s", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentCatalog).
		WithRecord("category", "42", "Pets").
		WithOperation(OpCreate).
		WithError(errors.New("boom"))

	if f[FieldKind] != "category" || f[FieldRecordID] != "42" || f[FieldRecordName] != "Pets" {
		t.Errorf("record fields not set: %v", f)
	}
	if f[FieldError] != "boom" {
		t.Errorf("error field = %v", f[FieldError])
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice length = %d, want %d", got, 2*len(f))
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&buf, nil)})
	ctx := IntoContext(context.Background(), base.With(FieldRequestID, "req_1"))

	FromContext(ctx).WithComponent(ComponentCatalog).InfoContext(ctx, "hello")
	out := buf.String()
	if !strings.Contains(out, "request_id=req_1") || strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=catalog") {
		t.Fatalf("unexpected record: %s", out)
	}
	if FromContext(context.Background()).Component() != ComponentApp {
		t.Error("missing logger should fall back to the default")
	}
}

func TestStructuredLoggerChangeAndError(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Handler: slog.NewJSONHandler(&buf, nil)})
	sl := NewStructuredLogger(base.With(FieldRequestID, "req_2"))
	ctx := context.Background()

	sl.LogChange(ctx, "category", "created", "42", "Pets")
	sl.LogError(ctx, "publish failed", errors.New("broker down"), ComponentAMQP, OpPublish, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %s", len(lines), buf.String())
	}
	var change, failure map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &change); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatal(err)
	}
	if change[FieldComponent] != ComponentCatalog || change[FieldRecordName] != "Pets" ||
		change[FieldOperation] != "created" || change[FieldRequestID] != "req_2" {
		t.Errorf("change record %v", change)
	}
	if failure["level"] != "ERROR" || failure[FieldComponent] != ComponentAMQP ||
		failure[FieldError] != "broker down" || failure[FieldOperation] != OpPublish {
		t.Errorf("error record %v", failure)
	}
}
