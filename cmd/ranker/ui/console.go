package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ranker/internal/session"
	"ranker/internal/types"
)

// ConsoleView asks duels as numbered lines and reads one answer per line:
// "1", "2", "/help" or "/save". It is used when stdin is not a terminal.
type ConsoleView struct {
	scanner  *bufio.Scanner
	out      io.Writer
	markdown *Markdown
}

// NewConsoleView returns a console view reading from in and writing to out.
func NewConsoleView(in io.Reader, out io.Writer) *ConsoleView {
	return &ConsoleView{
		scanner:  bufio.NewScanner(in),
		out:      out,
		markdown: NewMarkdown(LightTheme(), true),
	}
}

// ChooseOption implements session.View. Unrecognised lines are re-asked and
// end of input counts as /save.
func (c *ConsoleView) ChooseOption(ctx context.Context, p session.Prompt) (types.Action, error) {
	fmt.Fprintf(c.out, "\nRound %d: (Progress Completed: %.2f%%)\n", p.Round, p.Progress*100)
	fmt.Fprintf(c.out, "1. %s\n", p.A)
	fmt.Fprintf(c.out, "2. %s\n", p.B)

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if !c.scanner.Scan() {
			if err := c.scanner.Err(); err != nil {
				return 0, fmt.Errorf("read answer: %w", err)
			}
			return types.SaveAndExit, nil
		}

		switch strings.ToLower(strings.TrimSpace(c.scanner.Text())) {
		case "1":
			return types.ChoseA, nil
		case "2":
			return types.ChoseB, nil
		case "/help", "?":
			return types.RequestHelp, nil
		case "/save":
			return types.SaveAndExit, nil
		case "":
		default:
			fmt.Fprintln(c.out, "Please answer 1, 2, /help or /save.")
		}
	}
}

// ShowHelp implements session.View.
func (c *ConsoleView) ShowHelp(ctx context.Context) error {
	_, err := fmt.Fprintf(c.out, "\n%s", c.markdown.Render(HelpMarkdown))
	return err
}
