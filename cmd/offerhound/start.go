package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/offerhound/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the aggregation daemon",
	Long:  "Runs one aggregation immediately, then one per schedule tick; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"sources", len(cfg.EnabledSources()),
		"role_keywords", len(cfg.Strategy.RoleKeywords),
		"skill_keywords", len(cfg.Strategy.SkillKeywords),
		"history", cfg.History.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{notify: true}, logger)
	if err != nil {
		logger.Error("failed to set up", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	runner := scheduler.RunnerFunc(func(ctx context.Context) error {
		res, err := a.agg.Run(ctx, cfg.Strategy)
		if err != nil {
			return err
		}
		logger.Info("cycle summary", "run_id", res.RunID, "new", len(res.Offers), "warnings", len(res.Warnings))
		return nil
	})

	sched := scheduler.NewScheduler(runner, cfg.Schedule, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
