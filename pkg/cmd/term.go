package cmd

import (
	"context"
	"os"

	"github.com/klwxsrx/state-aggregator/pkg/sig"
)

// TermSignalAwaiter completes without error once the process receives a termination signal
func TermSignalAwaiter(ctx context.Context) error {
	return awaitSignal(ctx, sig.TermSignals())
}

func awaitSignal(ctx context.Context, signals <-chan os.Signal) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-signals:
		return nil
	}
}
