// Command heatsim runs urban-heat intervention scenarios and paired
// comparisons from JSON scenario files.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "heatsim",
		Short: "Urban heat health-outcome simulation engine",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var dbPath string
	var snapshots bool
	cmd := &cobra.Command{
		Use:   "run [scenario.json]",
		Short: "Run one scenario and archive the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(signalContext(), args[0], dbPath, snapshots)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "data/heatsim.db", "run archive path (empty to skip archiving)")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "retain per-day cell temperature snapshots")
	return cmd
}

func compareCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "compare [baseline.json] [scenario.json]",
		Short: "Run a paired baseline/intervention comparison",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComparison(signalContext(), args[0], args[1], dbPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "data/heatsim.db", "run archive path (empty to skip archiving)")
	return cmd
}

func historyCmd() *cobra.Command {
	var dbPath string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(dbPath, limit)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "data/heatsim.db", "run archive path")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to list")
	return cmd
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, so a long
// run aborts cleanly at the next day boundary with partial results.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, aborting at next day boundary", "signal", sig)
		cancel()
	}()
	return ctx
}
