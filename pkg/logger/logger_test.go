package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })
	return logs
}

func TestLogError(t *testing.T) {
	logs := observe(t)

	LogError(errors.New("connection reset"), "Failed to close redis client", zap.String("addr", "redis:6379"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "Failed to close redis client", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "connection reset", fields["error"])
	assert.Equal(t, "redis:6379", fields["addr"])
}

func TestLogAPICall_FailureIsError(t *testing.T) {
	logs := observe(t)

	LogAPICall(context.Background(), "mentor_api", "search", "error", 0.2)
	LogAPICall(context.Background(), "mentor_api", "search", "success", 0.1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}
