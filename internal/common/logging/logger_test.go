package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"WARN", WarnLevel},
		{"WARNING", WarnLevel},
		{"ERROR", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestZapLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	logger.Info("credential refreshed",
		Field{"provider", "gcp"},
		Field{"service", "imap"},
	)

	out := buf.String()
	if !strings.Contains(out, "credential refreshed") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "gcp") || !strings.Contains(out, "imap") {
		t.Errorf("expected fields in output, got %q", out)
	}
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  WarnLevel,
		Output: &buf,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	logger.Debug("should be dropped")
	logger.Info("should be dropped too")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected warn to pass the filter, got %q", out)
	}
}

func TestZapLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  InfoLevel,
		Output: &buf,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	child := logger.WithFields(Field{"identity", "user@example.com"})
	child.Info("persisting record")

	if !strings.Contains(buf.String(), "user@example.com") {
		t.Errorf("expected inherited field in output, got %q", buf.String())
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  InfoLevel,
		Output: &buf,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	SetGlobalLogger(logger)
	Info("global message")

	if !strings.Contains(buf.String(), "global message") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}
}
