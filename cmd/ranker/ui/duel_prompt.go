package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ranker/internal/logging"
	"ranker/internal/session"
	"ranker/internal/types"
)

// keyMap is the duel prompt's key bindings.
type keyMap struct {
	ChooseA key.Binding
	ChooseB key.Binding
	Help    key.Binding
	Save    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ChooseA: key.NewBinding(
			key.WithKeys("1", "left", "h"),
			key.WithHelp("1/←", "prefer left"),
		),
		ChooseB: key.NewBinding(
			key.WithKeys("2", "right", "l"),
			key.WithHelp("2/→", "prefer right"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "save & quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ChooseA, k.ChooseB, k.Help, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ChooseA, k.ChooseB},
		{k.Help, k.Save, k.Quit},
	}
}

// duelModel shows one duel and quits as soon as the user acts.
type duelModel struct {
	prompt   session.Prompt
	styles   Styles
	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int

	action types.Action
}

func newDuelModel(p session.Prompt, styles Styles) duelModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	return duelModel{
		prompt:   p,
		styles:   styles,
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: bar,
		width:    80,
	}
}

// Init initializes the model.
func (m duelModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m duelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ChooseA):
			m.action = types.ChoseA
		case key.Matches(msg, m.keys.ChooseB):
			m.action = types.ChoseB
		case key.Matches(msg, m.keys.Help):
			m.action = types.RequestHelp
		case key.Matches(msg, m.keys.Save), key.Matches(msg, m.keys.Quit):
			m.action = types.SaveAndExit
		default:
			return m, nil
		}
		return m, tea.Quit
	}
	return m, nil
}

// View renders the duel. Once answered only a one-line record is left on
// screen.
func (m duelModel) View() string {
	if m.action != 0 {
		return m.styles.Muted.Render(m.summary()) + "\n"
	}

	header := m.styles.Header.Render(fmt.Sprintf("Round %d", m.prompt.Round))
	question := m.styles.Question.Render("Which do you prefer?")

	a := m.styles.Option.Render(m.styles.OptionKey.Render("1") + "  " + m.prompt.A)
	b := m.styles.Option.Render(m.styles.OptionKey.Render("2") + "  " + m.prompt.B)
	options := lipgloss.JoinHorizontal(lipgloss.Top, a, "  ", b)
	if lipgloss.Width(options) > m.width {
		options = lipgloss.JoinVertical(lipgloss.Left, a, b)
	}

	bar := m.progress.ViewAs(m.prompt.Progress) + " " +
		m.styles.Subtitle.Render(fmt.Sprintf("%.1f%% known", m.prompt.Progress*100))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		question,
		options,
		"",
		bar,
		"",
		m.help.View(m.keys),
	) + "\n"
}

func (m duelModel) summary() string {
	switch m.action {
	case types.ChoseA:
		return fmt.Sprintf("Round %d: %s over %s", m.prompt.Round, m.prompt.A, m.prompt.B)
	case types.ChoseB:
		return fmt.Sprintf("Round %d: %s over %s", m.prompt.Round, m.prompt.B, m.prompt.A)
	case types.SaveAndExit:
		return fmt.Sprintf("Round %d: saving", m.prompt.Round)
	default:
		return fmt.Sprintf("Round %d", m.prompt.Round)
	}
}

// DuelPrompt is the interactive terminal view. Each duel runs as its own
// short bubbletea program so answers scroll by like a transcript.
type DuelPrompt struct {
	styles   Styles
	markdown *Markdown
	in       io.Reader
	out      io.Writer
}

// NewDuelPrompt returns a prompt reading keys from in and drawing to out.
func NewDuelPrompt(styles Styles, in io.Reader, out io.Writer) *DuelPrompt {
	return &DuelPrompt{
		styles:   styles,
		markdown: NewMarkdown(styles.Theme, false),
		in:       in,
		out:      out,
	}
}

// ChooseOption implements session.View.
func (d *DuelPrompt) ChooseOption(ctx context.Context, p session.Prompt) (types.Action, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prog := tea.NewProgram(newDuelModel(p, d.styles),
		tea.WithContext(ctx),
		tea.WithInput(d.in),
		tea.WithOutput(d.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("duel prompt: %w", err)
	}

	m, ok := final.(duelModel)
	if !ok || m.action == 0 {
		logging.UIDebug("duel prompt ended without an answer, treating as save")
		return types.SaveAndExit, nil
	}
	return m.action, nil
}

// ShowHelp implements session.View.
func (d *DuelPrompt) ShowHelp(ctx context.Context) error {
	_, err := io.WriteString(d.out, d.markdown.Render(HelpMarkdown))
	return err
}
