package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "n", 1)
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("expected info record to be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) {
		t.Fatalf("expected JSON warn record, got %s", out)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", "text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text record, got %s", buf.String())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatalf("expected logger")
	}
	logger.Error("dropped", "n", 1)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("error")
	if err != nil || lvl != slog.LevelError {
		t.Fatalf("unexpected %v %v", lvl, err)
	}
}
