package main

import (
	"net/http"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/amishk599/offerhound/internal/notifier"
)

var notifyChannel string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test notification to every configured channel, or only to --channel.",
	RunE:  runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().StringVar(&notifyChannel, "channel", "", "only test this channel (log, slack, telegram)")
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if notifyChannel != "" {
		if !slices.Contains(cfg.Notification.Channels, notifyChannel) {
			logger.Error("channel is not configured", "channel", notifyChannel, "configured", cfg.Notification.Channels)
			os.Exit(1)
		}
		cfg.Notification.Channels = []string{notifyChannel}
	}

	httpClient := &http.Client{Timeout: cfg.Concurrency.HTTPTimeout}
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	if err := notifier.SendTestMessage(n); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
