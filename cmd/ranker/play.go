package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ranker/cmd/ranker/ui"
	"ranker/internal/candidates"
	"ranker/internal/session"
	"ranker/internal/store"
	"ranker/internal/tournament"
)

// commandContext returns the command's context, or Background when the
// command was invoked directly rather than through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openStore opens the configured backend with paths under the state dir.
func openStore() (store.Store, error) {
	s, err := store.Open(cfg.ResolvedStore())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// isTerminal reports whether both ends are a TTY.
func isTerminal(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok {
		return false
	}
	fout, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(fin.Fd()) && isatty.IsTerminal(fout.Fd())
}

// viewStyle returns the styles for the configured theme and whether output
// should stay plain (ui.plain is set or stdio is not a terminal).
func viewStyle(cmd *cobra.Command) (ui.Styles, bool) {
	styles := ui.NewStyles(ui.DetectTheme(cfg.UI.Theme))
	return styles, cfg.UI.Plain || !isTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
}

// chooseView returns the interactive prompt on a terminal and the line-based
// console view otherwise.
func chooseView(cmd *cobra.Command) (session.View, ui.Styles, bool) {
	styles, plain := viewStyle(cmd)
	if plain {
		return ui.NewConsoleView(cmd.InOrStdin(), cmd.OutOrStdout()), styles, true
	}
	return ui.NewDuelPrompt(styles, cmd.InOrStdin(), cmd.OutOrStdout()), styles, false
}

func exporter() candidates.Exporter {
	return candidates.Exporter{DateFormat: cfg.Export.DateFormat}
}

// play runs the tournament until it completes or the user saves. An
// interrupt saves progress before returning.
func play(cmd *cobra.Command, tour *tournament.Tournament, s store.Store) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	view, styles, plain := chooseView(cmd)

	r := &session.Runner{
		Tournament: tour,
		View:       view,
		Store:      s,
		Exporter:   exporter(),
		Logger:     logger,
	}

	outcome, err := r.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		// The save must outlive the canceled context.
		if saveErr := saveState(context.WithoutCancel(ctx), tour, s); saveErr != nil {
			return errors.Join(err, saveErr)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.Warning.Render("Interrupted. Progress saved."))
		fmt.Fprintf(out, "Resume with `ranker resume %s`.\n", tour.ID())
		return nil
	case err != nil && outcome != session.OutcomeCompleted:
		return err
	}

	switch outcome {
	case session.OutcomeSuspended:
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.Success.Render("Ranking is saved."))
		fmt.Fprintf(out, "Run `ranker resume %s` to pick up where you left off.\n", tour.ID())
	case session.OutcomeCompleted:
		if printErr := printRanking(out, tour, styles, plain); printErr != nil {
			return errors.Join(err, printErr)
		}
		if err == nil {
			for _, p := range tour.OutputPaths() {
				fmt.Fprintf(out, "Wrote %s\n", p)
			}
		}
	}
	return err
}

func saveState(ctx context.Context, tour *tournament.Tournament, s store.Store) error {
	tour.Release()
	st, err := tour.Snapshot()
	if err != nil {
		return err
	}
	if err := s.Save(ctx, st); err != nil {
		return fmt.Errorf("save tournament: %w", err)
	}
	logger.Info("tournament saved after interrupt", zap.String("tournament", tour.ID()))
	return nil
}

// printRanking renders a completed ranking as Markdown.
func printRanking(out io.Writer, tour *tournament.Tournament, styles ui.Styles, plain bool) error {
	ranking, err := tour.Ranking()
	if err != nil {
		return err
	}
	md := ui.NewMarkdown(styles.Theme, plain)
	_, err = io.WriteString(out, md.Render(exporter().Markdown(ranking, time.Now())))
	return err
}
