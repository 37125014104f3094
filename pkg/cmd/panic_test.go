package cmd_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klwxsrx/state-aggregator/pkg/cmd"
	"github.com/klwxsrx/state-aggregator/pkg/log"
)

func TestHandleAppPanic(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelError, log.WithOutput(buf))

	assert.NotPanics(t, func() {
		defer cmd.HandleAppPanic(context.Background(), logger)
		panic("boom")
	})
	assert.Contains(t, buf.String(), "app failed with panic")
	assert.Contains(t, buf.String(), "boom")
}

func TestLogPanic_IgnoresNil(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelError, log.WithOutput(buf))

	assert.False(t, cmd.LogPanic(context.Background(), logger, nil))
	assert.Empty(t, buf.String())
}
