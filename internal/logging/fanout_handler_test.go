package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(discardHandler); !ok {
		t.Fatal("expected a discarding handler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single live handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevels(t *testing.T) {
	var info, warn bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled for both handlers")
	}
	logger := slog.New(h).With(slog.String("folder", "HuTao"))
	logger.Info("info message")
	if info.Len() == 0 || warn.Len() != 0 {
		t.Fatalf("unexpected routing: info=%q warn=%q", info.String(), warn.String())
	}
	if !bytes.Contains(info.Bytes(), []byte(`"folder":"HuTao"`)) {
		t.Fatalf("expected attrs to propagate, got %q", info.String())
	}
	logger.WithGroup("stage").Warn("warn message", slog.String("id", "hash"))
	if !bytes.Contains(warn.Bytes(), []byte(`"stage":{"id":"hash"}`)) {
		t.Fatalf("expected grouped attr in warn output, got %q", warn.String())
	}
}
