package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/offerhound/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the history size and the most recent offers",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of recent offers to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := history.Open(ctx, historyConfig(cfg))
	if err != nil {
		logger.Error("failed to open history", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Load(ctx); err != nil {
		logger.Warn("history load failed", "error", err)
	}
	recent, err := store.Recent(ctx, historyLimit)
	if err != nil {
		logger.Error("failed to read history", "error", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d offers seen\n\n", headerStyle.Render("History:"), store.Len())
	for _, o := range recent {
		printOffer(out, o)
	}
	return nil
}
