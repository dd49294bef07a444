package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevelKnownNames(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("info"))
	require.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNewLoggerWithNoPathDoesNotPanic(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "debug"})
	require.NotNil(t, logger)
}

func TestNewLoggerWithPathRotatesToFile(t *testing.T) {
	logger := NewLogger(LogConfig{Path: t.TempDir() + "/crucible.log", Level: "info"})
	require.NotNil(t, logger)
}

func TestOrDefault(t *testing.T) {
	require.Equal(t, 5, orDefault(0, 5))
	require.Equal(t, 5, orDefault(-1, 5))
	require.Equal(t, 10, orDefault(10, 5))
}
