package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/state-aggregator/pkg/log"
)

func TestLogger_Log_WritesContextAndEntryFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelInfo, log.WithOutput(buf))

	ctx := logger.WithContext(context.Background(), log.Fields{"topic": "a"})
	logger.
		WithField("messageID", "m-1").
		WithError(errors.New("broken payload")).
		Warn(ctx, "message handled with error")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "message handled with error", entry["msg"])
	assert.Equal(t, "a", entry["topic"])
	assert.Equal(t, "m-1", entry["messageID"])
	assert.Equal(t, "broken payload", entry["error"])
}

func TestLogger_Log_SkipsBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelWarn, log.WithOutput(buf))

	logger.Info(context.Background(), "skipped")
	logger.Log(context.Background(), log.LevelDisabled, "skipped")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	level, ok := log.ParseLevel(" Debug ")
	assert.True(t, ok)
	assert.Equal(t, log.LevelDebug, level)

	_, ok = log.ParseLevel("verbose")
	assert.False(t, ok)
}
