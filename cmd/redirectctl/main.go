package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"redirector/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "redirectctl: %v\n", err)
		os.Exit(1)
	}
}
