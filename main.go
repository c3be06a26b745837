package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/budget-monitor/cmd/dedup"
	"fjacquet/budget-monitor/cmd/reconcile"
	"fjacquet/budget-monitor/cmd/root"
	"fjacquet/budget-monitor/cmd/validate"
	"fjacquet/budget-monitor/internal/config"
)

func init() {
	// Environment first so LOG_LEVEL applies to the bootstrap logger.
	config.LoadEnv()
	config.BootstrapLogLevel()

	root.Init()

	root.Cmd.AddCommand(reconcile.Cmd)
	root.Cmd.AddCommand(dedup.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
