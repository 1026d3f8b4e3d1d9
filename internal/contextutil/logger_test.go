package contextutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext_Default(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() should fall back to slog.Default()")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")

	ctx := WithLogger(context.Background(), logger)
	got := LoggerFromContext(ctx)
	if got != logger {
		t.Fatal("LoggerFromContext() should return the stored logger")
	}

	got.Info("hello")
	if !strings.Contains(buf.String(), "request_id=abc") {
		t.Errorf("logger output = %q, want request_id attribute", buf.String())
	}
}
