package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"ranker/internal/logging"
)

// HelpMarkdown explains the inputs accepted while a duel is shown.
const HelpMarkdown = `## How ranking works

Each round shows two candidates. Pick the one you prefer; answers you have
already implied are never asked again.

| Input | Terminal | Console |
|---|---|---|
| Prefer candidate 1 | ` + "`1`" + ` or ` + "`←`" + ` | ` + "`1`" + ` |
| Prefer candidate 2 | ` + "`2`" + ` or ` + "`→`" + ` | ` + "`2`" + ` |
| Show this guide | ` + "`?`" + ` | ` + "`/help`" + ` |
| Save and exit | ` + "`s`" + `, ` + "`q`" + ` or ` + "`ctrl+c`" + ` | ` + "`/save`" + ` |

A saved ranking is picked up again with ` + "`ranker resume`" + `.
`

// DefaultWordWrap is the column glamour wraps rendered Markdown at.
const DefaultWordWrap = 80

// Markdown renders Markdown for the terminal. A nil *Markdown, or one whose
// renderer failed to build, returns its input unchanged.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown builds a renderer matching the theme. plain selects glamour's
// no-color style for pipes and dumb terminals.
func NewMarkdown(theme Theme, plain bool) *Markdown {
	style := "light"
	switch {
	case plain:
		style = "notty"
	case theme.IsDark:
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		logging.UIDebug("markdown renderer unavailable (%s): %v", style, err)
		return &Markdown{}
	}
	return &Markdown{renderer: renderer}
}

// Render returns md rendered for the terminal.
func (m *Markdown) Render(md string) string {
	if m == nil || m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		logging.UIDebug("markdown render failed: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
