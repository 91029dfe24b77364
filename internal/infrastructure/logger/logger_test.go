package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seminarhub/core/internal/infrastructure/config"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestWithHelpersAddFields(t *testing.T) {
	l, logs := observed()

	l.WithRequestID("req-1").WithError(errors.New("boom")).WithComponent("store").Infow("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "store", fields["component"])
}

func TestLogHTTPRequestLevels(t *testing.T) {
	l, logs := observed()

	l.LogHTTPRequest("GET", "/seminars", "192.0.2.1", 200, 1.5, nil)
	l.LogHTTPRequest("GET", "/seminars/9", "192.0.2.1", 404, 0.5, errors.New("not found"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status_code"])
}

func TestCloseFlushes(t *testing.T) {
	assert.NoError(t, NewNop().Close())
}
