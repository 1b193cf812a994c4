package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONIncludesFieldsAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf}).With(String("component", "api"))

	ctx := ContextWithRequestID(context.Background(), "req-42")
	log.Debug(ctx, "mission created", String("mission_id", "M-1"), Int("objectives", 2), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]any{
		"msg":        "mission created",
		"level":      "DEBUG",
		"component":  "api",
		"mission_id": "M-1",
		"objectives": float64(2),
		"request_id": "req-42",
		"error":      "boom",
	} {
		if rec[key] != want {
			t.Fatalf("%s=%v, want %v (record %v)", key, rec[key], want, rec)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" || RequestIDFromContext(ctx) != id {
		t.Fatalf("request id not stored: %q", id)
	}
	again, same := EnsureRequestID(ctx)
	if same != id || again != ctx {
		t.Fatalf("existing request id replaced: %q -> %q", id, same)
	}
	if RequestIDFromContext(nil) != "" {
		t.Fatalf("nil context should have no request id")
	}
}

func TestLoggerFromContext(t *testing.T) {
	if _, ok := LoggerFromContext(context.Background()).(noopLogger); !ok {
		t.Fatalf("expected noop fallback")
	}
	rec := NewRecorder()
	ctx, l := WithRequestLogger(context.Background(), rec)
	if l != Logger(rec) || LoggerFromContext(ctx) != Logger(rec) {
		t.Fatalf("logger not stored on context")
	}
	if RequestIDFromContext(ctx) == "" {
		t.Fatalf("WithRequestLogger should attach a request id")
	}
}

func TestRecorderSharesEntriesAcrossWith(t *testing.T) {
	rec := NewRecorder()
	child := rec.With(String("mission_id", "M-1"))
	child.Info(context.Background(), "evaluated", Float("rate", 50))
	rec.Error(context.Background(), "failed")

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries=%d, want 2", len(entries))
	}
	if entries[0].Fields["mission_id"] != "M-1" || entries[0].Fields["rate"] != 50.0 {
		t.Fatalf("child fields lost: %+v", entries[0])
	}
	if entries[1].Level != slog.LevelError || len(entries[1].Fields) != 0 {
		t.Fatalf("parent entry: %+v", entries[1])
	}
}
