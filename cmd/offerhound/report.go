package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/amishk599/offerhound/internal/aggregator"
	"github.com/amishk599/offerhound/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	titleStyle = lipgloss.NewStyle().Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	offerStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 2)
)

// printReport writes the per-source table, the new offers and any warnings.
func printReport(w io.Writer, res aggregator.Result) {
	fmt.Fprintln(w, headerStyle.Render("Run "+res.RunID))
	fmt.Fprintln(w, sourceTable(res.Sources))
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Total offers found: %d", len(res.Offers))))
	for _, o := range res.Offers {
		printOffer(w, o)
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d warnings", len(res.Warnings))))
		for _, err := range res.Warnings {
			fmt.Fprintln(w, offerStyle.Render(dimStyle.Render("- "+err.Error())))
		}
	}
}

func printOffer(w io.Writer, o model.Offer) {
	lines := []string{
		titleStyle.Render(o.Title),
		o.Company + " · " + o.Location,
		dimStyle.Render(o.JobURL),
	}
	fmt.Fprintln(w, offerStyle.Render(strings.Join(lines, "\n")))
	fmt.Fprintln(w)
}

func sourceTable(stats []aggregator.SourceStats) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("Source", "Fetched", "Rejected", "Geo", "New", "Scored out", "Saved", "Took", "Error").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, s := range stats {
		errText := ""
		if s.Err != nil {
			errText = warnStyle.Render(truncate(s.Err.Error(), 40))
		}
		t.Row(
			s.Name,
			strconv.Itoa(s.Fetched),
			rejections(s.Rejected),
			strconv.Itoa(s.GeoRejected),
			strconv.Itoa(s.New),
			strconv.Itoa(s.ScoredOut),
			strconv.Itoa(s.Persisted),
			s.Duration.Round(time.Millisecond).String(),
			errText,
		)
	}
	return t.String()
}

// rejections renders per-stage counts as "role=3 skill=1", sorted by stage.
func rejections(byStage map[string]int) string {
	if len(byStage) == 0 {
		return "0"
	}
	stages := make([]string, 0, len(byStage))
	for stage := range byStage {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	parts := make([]string, 0, len(stages))
	for _, stage := range stages {
		parts = append(parts, fmt.Sprintf("%s=%d", stage, byStage[stage]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
