package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ranker/internal/candidates"
	"ranker/internal/tournament"
)

var newOutputs []string

// newCmd starts a new ranking
var newCmd = &cobra.Command{
	Use:   "new <candidates-file>",
	Short: "Start ranking the candidates in a file",
	Long: `Reads candidate names and starts asking duels.

The file is either plain text with one name per line, or YAML (.yaml/.yml)
holding a list of names or a "candidates:" list. Blank lines are skipped;
duplicate names are rejected.

Example:
  ranker new movies.txt --out top-movies.md`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	names, err := candidates.Import(args[0])
	if err != nil {
		return fmt.Errorf("failed to import candidates: %w", err)
	}

	// Absolute so a later resume from another directory writes the same files.
	outputs := make([]string, 0, len(newOutputs))
	for _, p := range newOutputs {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("invalid output path %q: %w", p, err)
		}
		if slices.Contains(outputs, abs) {
			continue
		}
		outputs = append(outputs, abs)
	}

	tour, err := tournament.New(names,
		tournament.WithSeed(cfg.Pairing.SeedOrNow(time.Now()), cfg.Pairing.SkipMean),
		tournament.WithOutputs(outputs...),
	)
	if err != nil {
		return err
	}
	logger.Info("tournament created",
		zap.String("tournament", tour.ID()),
		zap.Int("candidates", tour.Size()),
		zap.Strings("outputs", outputs))

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ranking %d candidates. You will be asked which of two you prefer until a full ranking is known.\n", tour.Size())
	fmt.Fprintln(out, "At any point you can ask for help or save and exit.")

	return play(cmd, tour, s)
}
