package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestToCharmLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, toCharmLevel(slog.Level(-12)))
	assert.Equal(t, log.DebugLevel, toCharmLevel(slog.LevelDebug))
	assert.Equal(t, log.InfoLevel, toCharmLevel(slog.LevelInfo))
	assert.Equal(t, log.WarnLevel, toCharmLevel(slog.LevelWarn))
	assert.Equal(t, log.ErrorLevel, toCharmLevel(slog.LevelError))
	assert.Equal(t, log.ErrorLevel, toCharmLevel(slog.Level(12)))
}

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "warn"}, &buf)

	logger.Info("quiet")
	logger.Warn("store write failed", "backend", "state.json")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "store write failed")
	assert.Contains(t, out, "backend=state.json")
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "thoughts.log")

	logger, closer, err := New(Config{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Debug("reminder scheduled", "at", "08:00")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "reminder scheduled")
	assert.Contains(t, string(content), "at=08:00")
}

func TestNew_NoFileDiscards(t *testing.T) {
	logger, closer, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
