package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log output is not a JSON record: %v (%q)", err, buf.String())
	}
	return rec
}

func TestSlogLogger_Info(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)

	l.Info(context.Background(), "server started", "addr", ":50051")

	rec := decodeRecord(t, buf)
	if rec["msg"] != "server started" {
		t.Fatalf("got msg %v", rec["msg"])
	}
	if rec["level"] != "INFO" {
		t.Fatalf("got level %v", rec["level"])
	}
	if rec["addr"] != ":50051" {
		t.Fatalf("got addr %v", rec["addr"])
	}
}

func TestSlogLogger_DebugSuppressedAtInfoLevel(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)

	l.Debug(context.Background(), "noise")

	if buf.Len() != 0 {
		t.Fatalf("debug record emitted at info level: %q", buf.String())
	}
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)

	child := l.With("module", "grpc_server")
	child.Warn(context.Background(), "auth failed", "reason", "expired")

	rec := decodeRecord(t, buf)
	if rec["module"] != "grpc_server" {
		t.Fatalf("With attribute missing: %v", rec)
	}
	if rec["reason"] != "expired" {
		t.Fatalf("got reason %v", rec["reason"])
	}
	if rec["level"] != "WARN" {
		t.Fatalf("got level %v", rec["level"])
	}
}

func TestSlogLogger_Error(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)

	l.Error(context.Background(), "store unavailable", "error", "dial tcp: refused")

	rec := decodeRecord(t, buf)
	if rec["level"] != "ERROR" {
		t.Fatalf("got level %v", rec["level"])
	}
	if rec["error"] != "dial tcp: refused" {
		t.Fatalf("got error %v", rec["error"])
	}
}
