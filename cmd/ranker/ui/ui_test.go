package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranker/internal/session"
	"ranker/internal/types"
)

// =============================================================================
// THEME
// =============================================================================

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("RANKER_DARK_MODE", "")

	assert.True(t, DetectTheme("dark").IsDark)
	assert.False(t, DetectTheme("light").IsDark)
	assert.False(t, DetectTheme("auto").IsDark, "light is the fallback")

	t.Setenv("RANKER_DARK_MODE", "1")
	assert.True(t, DetectTheme("auto").IsDark)
	assert.False(t, DetectTheme("light").IsDark, "explicit preference wins")

	t.Setenv("RANKER_DARK_MODE", "")
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme("auto").IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme("auto").IsDark)

	t.Setenv("COLORFGBG", "0;default;8")
	assert.True(t, DetectTheme("").IsDark)
}

func TestNewStyles_FollowsTheme(t *testing.T) {
	dark := NewStyles(DarkTheme())
	assert.Equal(t, lipgloss.TerminalColor(DarkMuted), dark.Subtitle.GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(DarkPrimary), dark.Header.GetBackground())
	assert.Equal(t, lipgloss.TerminalColor(Warning), dark.Warning.GetForeground())

	light := NewStyles(LightTheme())
	assert.Equal(t, lipgloss.TerminalColor(LightMuted), light.Subtitle.GetForeground())
	assert.True(t, light.Subtitle.GetItalic())
}

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Saved", []string{"ID", "Round"})
	assert.Empty(t, table.View(NewStyles(LightTheme())))

	table.AddRow("abc", "4")
	table.AddRow("short")

	view := table.View(NewStyles(LightTheme()))
	assert.Contains(t, view, "Saved")
	assert.Contains(t, view, "Round")
	assert.Contains(t, view, "abc")
	assert.Contains(t, view, "short")
	assert.Equal(t, 5, strings.Count(view, "\n"), "title, header, rule and two rows")
}

// =============================================================================
// DUEL PROMPT MODEL
// =============================================================================

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testPrompt() session.Prompt {
	return session.Prompt{A: "Alpha", B: "Beta", Round: 3, Progress: 0.5}
}

func press(t *testing.T, m duelModel, msg tea.Msg) (duelModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	dm, ok := next.(duelModel)
	require.True(t, ok)
	return dm, cmd
}

func TestDuelModel_Keys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want types.Action
	}{
		{"1", runes("1"), types.ChoseA},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, types.ChoseA},
		{"h", runes("h"), types.ChoseA},
		{"2", runes("2"), types.ChoseB},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, types.ChoseB},
		{"help", runes("?"), types.RequestHelp},
		{"save", runes("s"), types.SaveAndExit},
		{"quit", runes("q"), types.SaveAndExit},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, types.SaveAndExit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, types.SaveAndExit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDuelModel(testPrompt(), NewStyles(LightTheme()))
			m, cmd := press(t, m, tt.msg)
			assert.Equal(t, tt.want, m.action)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestDuelModel_IgnoresOtherKeys(t *testing.T) {
	m := newDuelModel(testPrompt(), NewStyles(LightTheme()))
	m, cmd := press(t, m, runes("x"))
	assert.Zero(t, m.action)
	assert.Nil(t, cmd)
	assert.Nil(t, m.Init())
}

func TestDuelModel_View(t *testing.T) {
	m := newDuelModel(testPrompt(), NewStyles(LightTheme()))

	view := m.View()
	assert.Contains(t, view, "Round 3")
	assert.Contains(t, view, "Which do you prefer?")
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Beta")
	assert.Contains(t, view, "50.0% known")

	m, _ = press(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Equal(t, 20, m.width)
	view = m.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Beta")

	m, _ = press(t, m, runes("2"))
	assert.Equal(t, "Round 3: Beta over Alpha\n", stripStyle(m.View()))
}

func TestDuelModel_Summary(t *testing.T) {
	m := newDuelModel(testPrompt(), NewStyles(LightTheme()))
	m.action = types.ChoseA
	assert.Equal(t, "Round 3: Alpha over Beta", m.summary())
	m.action = types.SaveAndExit
	assert.Equal(t, "Round 3: saving", m.summary())
	m.action = types.RequestHelp
	assert.Equal(t, "Round 3", m.summary())
}

// stripStyle drops ANSI escapes so rendered text can be compared.
func stripStyle(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestDuelPrompt_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDuelPrompt(NewStyles(LightTheme()), strings.NewReader(""), &bytes.Buffer{})
	_, err := d.ChooseOption(ctx, testPrompt())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDuelPrompt_ShowHelp(t *testing.T) {
	var out bytes.Buffer
	d := NewDuelPrompt(NewStyles(DarkTheme()), strings.NewReader(""), &out)
	require.NoError(t, d.ShowHelp(context.Background()))
	assert.NotEmpty(t, out.String())
}

// =============================================================================
// CONSOLE VIEW
// =============================================================================

func TestConsoleView_ChooseOption(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Action
	}{
		{"first", "1\n", types.ChoseA},
		{"second", "2\n", types.ChoseB},
		{"help", "/help\n", types.RequestHelp},
		{"help shorthand", "?\n", types.RequestHelp},
		{"save", "/SAVE\n", types.SaveAndExit},
		{"padded", "  2  \n", types.ChoseB},
		{"end of input", "", types.SaveAndExit},
		{"retries junk", "three\n\n1\n", types.ChoseA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsoleView(strings.NewReader(tt.input), &out)
			got, err := c.ChooseOption(context.Background(), testPrompt())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Round 3: (Progress Completed: 50.00%)\n1. Alpha\n2. Beta\n")
		})
	}
}

func TestConsoleView_RepromptsOnJunk(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleView(strings.NewReader("yes\n2\n"), &out)
	got, err := c.ChooseOption(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, types.ChoseB, got)
	assert.Equal(t, 1, strings.Count(out.String(), "Please answer 1, 2, /help or /save."))
}

func TestConsoleView_SequentialPrompts(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleView(strings.NewReader("1\n2\n"), &out)

	first, err := c.ChooseOption(context.Background(), testPrompt())
	require.NoError(t, err)
	second, err := c.ChooseOption(context.Background(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, types.ChoseA, first)
	assert.Equal(t, types.ChoseB, second)
}

func TestConsoleView_ReadError(t *testing.T) {
	boom := errors.New("boom")
	c := NewConsoleView(iotest.ErrReader(boom), &bytes.Buffer{})
	_, err := c.ChooseOption(context.Background(), testPrompt())
	assert.ErrorIs(t, err, boom)
}

func TestConsoleView_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsoleView(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := c.ChooseOption(ctx, testPrompt())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsoleView_ShowHelp(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleView(strings.NewReader(""), &out)
	require.NoError(t, c.ShowHelp(context.Background()))
	assert.Contains(t, out.String(), "/save")
	assert.Contains(t, out.String(), "ranker resume")
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdown_NilRendersRaw(t *testing.T) {
	var m *Markdown
	assert.Equal(t, "# hi", m.Render("# hi"))
	assert.Equal(t, "# hi", (&Markdown{}).Render("# hi"))
}

func TestMarkdown_Plain(t *testing.T) {
	m := NewMarkdown(LightTheme(), true)
	out := m.Render("1. Alpha\n2. Beta\n")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.True(t, strings.HasSuffix(out, "\n"))
}
