package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ranker/internal/candidates"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

var (
	exportOutputs []string
	deleteForce   bool
)

// exportCmd writes a completed ranking again
var exportCmd = &cobra.Command{
	Use:   "export <id> --out <file>",
	Short: "Write a completed ranking to one or more files",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

// deleteCmd removes a saved ranking
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved ranking",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := loadState(ctx, s, args)
	if err != nil {
		return err
	}
	tour, err := tournament.FromState(st)
	if err != nil {
		return fmt.Errorf("failed to restore ranking %s: %w", st.ID, err)
	}
	if !tour.IsComplete() {
		return fmt.Errorf("ranking %s is not complete (%.1f%% known): %w", tour.ID(), tour.Progress()*100, types.ErrIllegalState)
	}

	ranking, err := tour.Ranking()
	if err != nil {
		return err
	}
	paths := candidates.UniquePaths(exportOutputs)
	// Completion time, so a re-export matches the files written at completion.
	if err := exporter().ExportAll(ctx, paths, ranking, tour.UpdatedAt().Local()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	logger.Info("ranking exported", zap.String("tournament", tour.ID()), zap.Strings("paths", paths))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := loadState(ctx, s, args)
	if err != nil {
		return err
	}
	if !st.Complete() && !deleteForce {
		return fmt.Errorf("ranking %s is unfinished; use --force to delete it anyway: %w", st.ID, types.ErrIllegalState)
	}
	if err := s.Delete(ctx, st.ID); err != nil {
		return fmt.Errorf("failed to delete ranking %s: %w", st.ID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", st.ID)
	return nil
}
