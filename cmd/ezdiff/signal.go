package main

import (
	"context"
	"os"
	"os/signal"
)

// withInterrupt returns a context cancelled on the first interrupt signal.
// Sweeps check it between sample sizes and return what they have so far.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
