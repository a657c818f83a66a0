package logger

import (
	"bytes"
	stdlog "log"
	"os"
	"strings"
	"testing"
)

func resetLogger() {
	currentLevel = LevelInfo
	logger = stdlog.New(os.Stdout, "", 0)
}

func TestSetLevelFiltering(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetLevel("WARN")
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be suppressed, got: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN and ERROR messages should be written, got: %q", out)
	}
}

func TestSetLevelCaseInsensitive(t *testing.T) {
	defer resetLogger()

	SetLevel("debug")
	if currentLevel != LevelDebug {
		t.Errorf("expected LevelDebug, got %v", currentLevel)
	}
}

func TestSetLevelUnknownKeepsCurrent(t *testing.T) {
	defer resetLogger()

	SetLevel("ERROR")
	SetLevel("VERBOSE")
	if currentLevel != LevelError {
		t.Errorf("unknown level should not change the current level, got %v", currentLevel)
	}
}

func TestLevelPrefix(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetLevel("INFO")
	Info("hello %s", "world")

	out := buf.String()
	if !strings.Contains(out, "[INFO] ") || !strings.Contains(out, "hello world") {
		t.Errorf("expected level prefix and formatted message, got: %q", out)
	}
}
