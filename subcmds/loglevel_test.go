// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(newLevelHandler(slog.LevelWarn, base)).With("component", "test")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	for _, msg := range []string{"debug message", "info message"} {
		if strings.Contains(out, msg) {
			t.Fatalf("want %q to be dropped, got %q", msg, out)
		}
	}
	for _, msg := range []string{"warn message", "error message", "component=test"} {
		if !strings.Contains(out, msg) {
			t.Fatalf("want %q in the output, got %q", msg, out)
		}
	}
}
