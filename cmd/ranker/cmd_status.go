package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ranker/cmd/ranker/ui"
	"ranker/internal/tournament"
)

// statusCmd shows one saved ranking
var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show progress of a saved ranking (default: the most recent)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

// listCmd lists saved rankings
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved rankings",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := loadState(commandContext(cmd), s, args)
	if err != nil {
		return err
	}
	tour, err := tournament.FromState(st)
	if err != nil {
		return fmt.Errorf("failed to restore ranking %s: %w", st.ID, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ranking:    %s\n", tour.ID())
	fmt.Fprintf(out, "Candidates: %d\n", tour.Size())
	fmt.Fprintf(out, "Round:      %d\n", tour.Round())
	fmt.Fprintf(out, "Known:      %d of %d comparisons (%.1f%%)\n", tour.Knowledge(), tour.TotalKnowledge(), tour.Progress()*100)
	fmt.Fprintf(out, "Updated:    %s\n", tour.UpdatedAt().Local().Format(cfg.Export.DateFormat))
	for _, p := range tour.OutputPaths() {
		fmt.Fprintf(out, "Output:     %s\n", p)
	}

	if !tour.IsComplete() {
		fmt.Fprintln(out, "Status:     in progress")
		return nil
	}
	fmt.Fprintln(out, "Status:     complete")
	fmt.Fprintln(out)
	styles, plain := viewStyle(cmd)
	return printRanking(out, tour, styles, plain)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list rankings: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No saved rankings found.")
		return nil
	}

	styles, _ := viewStyle(cmd)
	table := ui.NewSimpleTable("Saved Rankings", []string{"ID", "Candidates", "Round", "Progress", "Status", "Updated"})
	for _, sum := range summaries {
		status := "in progress"
		if sum.Complete {
			status = "complete"
		}
		table.AddRow(
			sum.ID,
			strconv.Itoa(sum.Candidates),
			strconv.Itoa(sum.Round),
			fmt.Sprintf("%.1f%%", sum.Progress*100),
			status,
			sum.UpdatedAt.Local().Format(cfg.Export.DateFormat),
		)
	}
	fmt.Fprint(out, table.View(styles))
	fmt.Fprintf(out, "Total: %d rankings\n", len(summaries))
	return nil
}
