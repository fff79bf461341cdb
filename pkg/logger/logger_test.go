/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":   TraceLevel,
		"DEBUG":   DebugLevel,
		"":        InfoLevel,
		" info ":  InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	require.NoError(t, Initialize(Config{Level: WarnLevel, Component: "sfdelta"}))
	require.NotNil(t, defaultLogger)
	assert.Equal(t, "sfdelta", defaultLogger.config.Component)
	assert.True(t, Enabled(ErrorLevel))
	assert.False(t, Enabled(InfoLevel))
}

func TestLoggerPrettyFormatting(t *testing.T) {
	l := New(Config{Level: InfoLevel, Component: "sfdelta", DryRun: true}, &bytes.Buffer{})
	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "manifest written",
		Component: "sfdelta",
		DryRun:    true,
		Fields:    map[string]interface{}{"path": "package.xml", "added": 3},
	}

	out := l.formatPretty(entry)
	assert.Equal(t, "2025-01-01 12:00:00 [INFO] sfdelta: [DRY-RUN] manifest written {added=3, path=package.xml}", out)
}

func TestLoggerColorFormatting(t *testing.T) {
	l := New(Config{UseColor: true}, &bytes.Buffer{})
	out := l.formatPretty(LogEntry{Time: time.Now(), Level: "WARN", Message: "careful"})
	assert.Contains(t, out, "\033[33mWARN\033[0m")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: DebugLevel, JSON: true, Component: "sfdelta"}, &buf)

	l.Log(InfoLevel, "revision processed",
		String("revision", "HEAD"),
		Strings("types", []string{"ApexClass", "Flow"}),
		Int("components", 2),
		Bool("dry_run", false),
		Err(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "revision processed", entry["message"])
	assert.Equal(t, "sfdelta", entry["component"])

	fields := entry["fields"].(map[string]interface{})
	assert.Equal(t, "HEAD", fields["revision"])
	assert.Equal(t, []interface{}{"ApexClass", "Flow"}, fields["types"])
	assert.Equal(t, float64(2), fields["components"])
	assert.Equal(t, false, fields["dry_run"])
	assert.Equal(t, "boom", fields["error"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel}, &buf)

	l.Log(DebugLevel, "hidden")
	l.Log(InfoLevel, "hidden")
	l.Log(WarnLevel, "shown")
	l.Log(ErrorLevel, "shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLoggerDebugCallerInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })
	defaultLogger = New(Config{Level: TraceLevel}, &buf)

	Debug("with caller")
	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestConvenienceFunctionsWithoutLogger(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })
	defaultLogger = nil

	assert.NotPanics(t, func() {
		Trace("t")
		Debug("d")
		Warn("w")
		Error("e")
		SetOutput(&bytes.Buffer{})
	})
	assert.False(t, Enabled(ErrorLevel))
}

func TestSetOutput(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })
	require.NoError(t, Initialize(Config{Level: InfoLevel}))

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("redirected")
	Warn("also redirected", String("k", "v"))
	assert.Contains(t, buf.String(), "redirected")
	assert.Contains(t, buf.String(), "{k=v}")
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Nil(t, f.Value)
}
