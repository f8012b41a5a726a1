package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ranker/internal/store"
	"ranker/internal/tournament"
)

// resumeCmd continues a saved ranking
var resumeCmd = &cobra.Command{
	Use:   "resume [id]",
	Short: "Continue a saved ranking (default: the most recent)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResume,
}

// loadState returns the saved tournament with the given ID, or the most
// recently updated one when args is empty.
func loadState(ctx context.Context, s store.Store, args []string) (*tournament.State, error) {
	var (
		st  *tournament.State
		err error
	)
	if len(args) == 1 {
		st, err = s.Load(ctx, args[0])
	} else {
		st, err = s.Latest(ctx)
	}
	if errors.Is(err, store.ErrNotFound) {
		if len(args) == 1 {
			return nil, fmt.Errorf("no saved ranking with id %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("no saved rankings; start one with `ranker new`: %w", err)
	}
	return st, err
}

func runResume(cmd *cobra.Command, args []string) error {
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
	if tour.IsComplete() {
		fmt.Fprintln(out, "This ranking is already complete.")
		styles, plain := viewStyle(cmd)
		return printRanking(out, tour, styles, plain)
	}

	fmt.Fprintf(out, "Resuming ranking of %d candidates at round %d (%.1f%% known).\n",
		tour.Size(), tour.Round(), tour.Progress()*100)
	return play(cmd, tour, s)
}
