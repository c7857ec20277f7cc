package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/offerhound/internal/history"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Aggregate once, print matches, exit",
	Long:  "One-shot aggregation against an empty in-memory history. Nothing is persisted and no notifications are sent.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: history is not read or written")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{store: history.NewMemoryStore(), dryRun: true}, logger)
	if err != nil {
		logger.Error("failed to set up", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.agg.Run(ctx, cfg.Strategy)
	if err != nil {
		logger.Warn("check interrupted", "error", err)
	}
	printReport(cmd.OutOrStdout(), res)

	logger.Info("check complete")
	return nil
}
