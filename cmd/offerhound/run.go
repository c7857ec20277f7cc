package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runNoNotify bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate once, record new offers, exit",
	Long:  "One aggregation against the configured history: new offers are persisted, notified and printed.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runNoNotify, "no-notify", false, "skip notification channels")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{notify: !runNoNotify}, logger)
	if err != nil {
		logger.Error("failed to set up", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.agg.Run(ctx, cfg.Strategy)
	if err != nil {
		logger.Warn("run interrupted", "error", err)
	}
	printReport(cmd.OutOrStdout(), res)
	return nil
}
