package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: HumanFormat,
		Level:  WarnLevel,
		Output: &buf,
	})

	logger.Trace("trace message", nil)
	logger.Debug("debug message", nil)
	logger.Info("info message", nil)
	logger.Warn("warn message", nil)
	logger.Error("error message", nil)

	out := buf.String()
	if strings.Contains(out, "trace message") || strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error messages should be logged, got: %s", out)
	}
}

func TestTraceLevelLogsEverything(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: HumanFormat,
		Level:  TraceLevel,
		Output: &buf,
	})

	logger.Trace("compiler output", map[string]interface{}{"header": "png.h"})

	if !strings.Contains(buf.String(), "compiler output") {
		t.Errorf("trace message should be logged at trace level, got: %s", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: JSONFormat,
		Level:  InfoLevel,
		Output: &buf,
	})

	logger.Info("hello", map[string]interface{}{"library": "cjson"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", entry["level"])
	}
	fields, ok := entry["fields"].(map[string]interface{})
	if !ok || fields["library"] != "cjson" {
		t.Errorf("expected library field, got %v", entry["fields"])
	}
}

func TestHumanFormatFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: HumanFormat,
		Level:  InfoLevel,
		Output: &buf,
	})

	logger.Info("resolved", map[string]interface{}{"roots": 3})

	out := buf.String()
	if !strings.Contains(out, "[info]") {
		t.Errorf("expected level marker in output, got: %s", out)
	}
	if !strings.Contains(out, "roots=3") {
		t.Errorf("expected field rendering in output, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"trace", TraceLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
