package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	rootCmd    = &cobra.Command{
		Use:   "simul",
		Short: "Timed task runner - compare sequential and concurrent execution",
		Long: `simul plays batches of timed units of work (moves in a chess simul,
calls to a slow API) sequentially, cooperatively on a single runner, or in
parallel goroutines, and reports the wall-clock time each strategy needs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log scheduler activity to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
