package cmd

import (
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAwaitSignal(t *testing.T) {
	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM
	assert.NoError(t, awaitSignal(context.Background(), signals))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, awaitSignal(ctx, make(chan os.Signal)), context.Canceled)
}
