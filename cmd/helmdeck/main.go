package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// everything long-running hangs off a context cancelled on SIGTERM/SIGINT
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
