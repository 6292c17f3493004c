package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"menora/internal/app"
	"menora/internal/config"
	"menora/internal/logging"
)

func main() {
	cfg, err := config.Load()
	must(err)

	a, err := app.New(cfg, logging.New(cfg))
	must(err)
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(a.Serve(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
