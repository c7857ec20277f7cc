package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/offerhound/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured sources.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %-25s %-10s %s\n", "Type", "Target", "Status", "Skips")
	fmt.Fprintln(out, strings.Repeat("─", 64))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Fprintf(out, "%-16s %-25s %-10s %s\n", s.Type, sourceTarget(s), status, strings.Join(s.SkipStages, ","))
	}

	fmt.Fprintf(out, "\nTotal: %d sources (%d enabled, %d disabled)\n", len(cfg.Sources), enabled, disabled)
	return nil
}

func sourceTarget(s config.SourceConfig) string {
	switch s.Type {
	case config.SourceGreenhouse, config.SourceLever, config.SourceAshby:
		return s.Name + " (" + s.BoardToken + ")"
	case config.SourceWellfound:
		if s.Role != "" {
			return s.Role
		}
	case config.SourceAdzuna:
		if s.Country != "" {
			return s.Country
		}
	case config.SourceWeWorkRemotely:
		if len(s.Feeds) > 0 {
			return fmt.Sprintf("%d feeds", len(s.Feeds))
		}
	}
	return "-"
}
