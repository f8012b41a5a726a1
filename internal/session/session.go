// Package session drives a tournament through a view: it asks each duel,
// forwards the answers, and saves or exports when the user stops or the
// ranking is complete.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ranker/internal/candidates"
	"ranker/internal/logging"
	"ranker/internal/store"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

// Prompt is everything a view needs to present one duel.
type Prompt struct {
	A        string
	B        string
	Round    int
	Progress float64
}

// View presents duels to the user.
type View interface {
	// ChooseOption shows the duel and returns what the user did.
	ChooseOption(ctx context.Context, p Prompt) (types.Action, error)
	// ShowHelp explains the available actions.
	ShowHelp(ctx context.Context) error
}

// Outcome is how a Run ended.
type Outcome int

const (
	// OutcomeSuspended means the user saved and left; the tournament can be resumed.
	OutcomeSuspended Outcome = iota + 1
	// OutcomeCompleted means the ranking is final.
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuspended:
		return "suspended"
	case OutcomeCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Runner connects a tournament to a view and a store.
type Runner struct {
	Tournament *tournament.Tournament
	View       View

	// Store may be nil, in which case nothing is persisted and SaveAndExit
	// only suspends.
	Store store.Store

	// Exporter writes the final ranking to the tournament's output paths.
	Exporter candidates.Exporter

	Logger *zap.Logger

	// Now stamps the export header. Defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Run asks duels until the ranking is complete or the user saves and exits.
//
// A failed save leaves the tournament untouched in memory, so Run can be
// called again to retry. Context cancellation is honoured between duels and
// leaves no duel active.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if r.Tournament == nil || r.View == nil {
		return 0, fmt.Errorf("runner needs a tournament and a view: %w", types.ErrInvalidArgument)
	}
	t := r.Tournament
	log := r.logger().With(zap.String("tournament", t.ID()))

	for !t.IsComplete() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		duel, err := t.NextQuery()
		if err != nil {
			return 0, err
		}

		action, err := r.ask(ctx, duel)
		if err != nil {
			t.Release()
			return 0, err
		}

		if action == types.SaveAndExit {
			t.Release()
			if err := r.save(ctx); err != nil {
				return 0, err
			}
			log.Info("tournament suspended", zap.Int("round", t.Round()), zap.Float64("progress", t.Progress()))
			logging.Session("suspended %s at round %d", t.ID(), t.Round())
			return OutcomeSuspended, nil
		}

		w, _ := action.Winner()
		if err := t.DeclareWinner(w); err != nil {
			return 0, err
		}
		for _, d := range t.Inferred() {
			log.Debug("inferred preference", zap.String("winner", d.A), zap.String("loser", d.B))
		}
	}

	return OutcomeCompleted, r.finish(ctx)
}

// ask shows the duel until the user picks a side or saves. Help requests are
// answered in place and the same duel is asked again.
func (r *Runner) ask(ctx context.Context, duel types.Duel[string]) (types.Action, error) {
	t := r.Tournament
	p := Prompt{A: duel.A, B: duel.B, Round: t.Round(), Progress: t.Progress()}
	for {
		action, err := r.View.ChooseOption(ctx, p)
		if err != nil {
			return 0, err
		}

		switch action {
		case types.ChoseA, types.ChoseB, types.SaveAndExit:
			logging.SessionDebug("round %d: %s", p.Round, action)
			return action, nil
		case types.RequestHelp:
			if err := r.View.ShowHelp(ctx); err != nil {
				return 0, err
			}
		default:
			logging.SessionWarn("view returned unknown action %v, asking again", action)
		}
	}
}

func (r *Runner) save(ctx context.Context) error {
	if r.Store == nil {
		return nil
	}
	st, err := r.Tournament.Snapshot()
	if err != nil {
		return err
	}
	if err := r.Store.Save(ctx, st); err != nil {
		return fmt.Errorf("save tournament: %w", err)
	}
	return nil
}

// finish persists the completed tournament and writes the exports. Both are
// attempted; their errors are joined.
func (r *Runner) finish(ctx context.Context) error {
	t := r.Tournament
	ranking, err := t.Ranking()
	if err != nil {
		return err
	}

	r.logger().Info("tournament complete",
		zap.String("tournament", t.ID()),
		zap.Int("candidates", t.Size()),
		zap.Int("duels", t.Round()-1))

	saveErr := r.save(ctx)

	var exportErr error
	if paths := t.OutputPaths(); len(paths) > 0 {
		exportErr = r.Exporter.ExportAll(ctx, paths, ranking, r.now())
	}

	return errors.Join(saveErr, exportErr)
}
