package cmd

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/klwxsrx/state-aggregator/pkg/log"
)

// HandleAppPanic must be called directly by defer
func HandleAppPanic(ctx context.Context, logger log.Logger) (panicCaught bool) {
	return LogPanic(ctx, logger, recover())
}

// LogPanic logs a value returned by recover, nil is ignored
func LogPanic(ctx context.Context, logger log.Logger, recovered any) (panicCaught bool) {
	if recovered == nil {
		return false
	}

	logger.WithField("panic", log.Fields{
		"message": fmt.Sprintf("%v", recovered),
		"stack":   string(debug.Stack()),
	}).Error(ctx, "app failed with panic")
	return true
}
