package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l := newLogger()

	assert.NotNil(t, l)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	formatter, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGlobalVariables(t *testing.T) {
	ctx := context.Background()
	logger1 := G(ctx)
	logger2 := G(ctx)
	assert.Equal(t, logger1.Logger, logger2.Logger)

	assert.NotNil(t, L)
	assert.IsType(t, &logrus.Entry{}, L)
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	custom := logrus.NewEntry(logrus.New()).WithField("component", "registry")

	retrieved := G(WithLogger(ctx, custom))
	assert.Contains(t, retrieved.Data, "component")
	assert.Equal(t, "registry", retrieved.Data["component"])
}

func TestGetLogger_WithoutContextLogger(t *testing.T) {
	retrieved := G(context.Background())
	require.NotNil(t, retrieved)
	assert.Equal(t, L.Logger, retrieved.Logger)
}

func TestSetLogLevel(t *testing.T) {
	original := L.Logger.GetLevel()
	defer L.Logger.SetLevel(original)

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("not-a-level"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel(), "a bad level leaves the logger unchanged")
}

func TestSetLogFormat(t *testing.T) {
	defer SetLogFormat("text")

	SetLogFormat("json")
	_, isJSON := L.Logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	SetLogFormat("text")
	_, isText := L.Logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger()
	setFormat(l, "json")
	l.SetOutput(&buf)
	l.SetLevel(logrus.InfoLevel)

	l.WithField("skill", "ds-tokens").Info("routed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "routed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "ds-tokens", entry["skill"])
	assert.Contains(t, entry, "timestamp")
}
