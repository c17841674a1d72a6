// Package main is the entry point for the staybook CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/evcraddock/staybook/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
