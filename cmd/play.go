package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucashald/skill-check/internal/data"
	"github.com/lucashald/skill-check/internal/engine"
	"github.com/lucashald/skill-check/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	injectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94"))

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))
)

const welcome = "Narrate with /gm, act with plain text, roll with /check <ability> <action>.\nType /help for every command, esc to quit."

var playCommands = []string{"/gm ", "/me ", "/check ", "/sheet", "/override ", "/yes", "/no", "/enable ", "/disable ", "/dc ", "/help"}

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

// reloadMsg is sent when a compendium file changed on disk.
type reloadMsg struct{}

type playModel struct {
	app         *session.Session
	reloads     <-chan struct{}
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	width       int
	height      int
	showList    bool
}

func newPlayModel(app *session.Session, reloads <-chan struct{}) playModel {
	ti := textinput.New()
	ti.Placeholder = "/gm A dragon lands on the ridge."
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60

	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false)
	sugList.SetShowHelp(false)

	return playModel{
		app:         app,
		reloads:     reloads,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		historyIdx:  -1,
		logContent:  welcome + "\n",
	}
}

func waitForReload(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return reloadMsg{}
	}
}

func (m *playModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForReload(m.reloads))
}

// completions lists what may follow the command word being typed.
func (m *playModel) completions(val string) []string {
	lower := strings.ToLower(val)
	var out []string
	argsFor := func(prefix string, options []string) {
		if !strings.HasPrefix(lower, prefix) {
			return
		}
		partial := lower[len(prefix):]
		for _, o := range options {
			if strings.HasPrefix(strings.ToLower(o), partial) && len(partial) < len(o) {
				out = append(out, val[:len(prefix)]+o)
			}
		}
	}

	var entries, compendiums, abilities []string
	for _, e := range m.app.Store().EntryList() {
		entries = append(entries, e.ID)
	}
	for _, c := range m.app.Store().Compendiums() {
		compendiums = append(compendiums, c.ID)
	}
	ch := m.app.Character()
	for _, k := range engine.AbilityKeys {
		abilities = append(abilities, ch.AbilityName(k)+" ")
	}

	argsFor("/override ", append(entries, "off"))
	argsFor("/enable ", compendiums)
	argsFor("/disable ", compendiums)
	if strings.Count(val, " ") <= 1 {
		argsFor("/check ", abilities)
	}
	if len(out) > 0 || strings.Contains(val, " ") {
		return out
	}
	for _, c := range playCommands {
		if strings.HasPrefix(c, lower) && len(val) < len(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m *playModel) updateSuggestions() {
	var items []list.Item
	if val := m.textInput.Value(); strings.HasPrefix(val, "/") {
		for _, c := range m.completions(val) {
			items = append(items, suggestion(c))
		}
	}

	m.suggestions.SetItems(items)
	m.showList = len(items) > 0
	if m.showList {
		h := len(items)
		if h > 10 {
			h = 10
		}
		if h < 4 {
			h = 4
		}
		m.suggestions.SetHeight(h)
		m.suggestions.ResetSelected()
	}
}

func (m *playModel) appendLog(lines ...string) {
	for _, l := range lines {
		m.logContent += l + "\n"
	}
	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *playModel) run(val string) {
	m.logContent += fmt.Sprintf("\n> %s\n", val)
	reply, err := m.app.Execute(val)
	if err != nil {
		m.appendLog(fmt.Sprintf("Error: %v", err))
		return
	}
	m.appendLog(reply.Lines...)
	if reply.Injection != "" {
		m.appendLog("Send to the narrator:", injectionStyle.Render(reply.Injection))
	}
	if levels, ok := m.app.PendingLevelUp(); ok {
		m.appendLog(fmt.Sprintf("Level up (+%d)? Answer /yes or /no.", levels))
	}
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
		rlCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case reloadMsg:
		n := m.app.Reload()
		m.appendLog(fmt.Sprintf("Compendiums reloaded: %d entries.", n))
		rlCmd = waitForReload(m.reloads)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "/quit" || val == "/exit" {
				return m, tea.Quit
			}
			if val != "" {
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()
				m.run(val)
			}

		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderState())
	listH := 0
	if m.showList {
		listH = m.suggestions.Height() + 2
	}
	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	m.viewport.Height = m.height - (titleH + stateH + 1 + listH + infoH + 6)
	if m.viewport.Height < 4 {
		m.viewport.Height = 4
	}

	return m, tea.Batch(tiCmd, vpCmd, lsCmd, rlCmd)
}

func (m *playModel) renderState() string {
	var b strings.Builder
	ch := m.app.Character()
	fmt.Fprintf(&b, "Level %d", ch.Level)
	if ch.UnspentPoints > 0 {
		fmt.Fprintf(&b, " (%d unspent)", ch.UnspentPoints)
	}
	fmt.Fprintf(&b, " | default DC %d", ch.Difficulty)
	if o := m.app.Engine().Settings().Override; o != "" {
		fmt.Fprintf(&b, " | override %s", o)
	}
	b.WriteString("\n\n")

	active := m.app.Engine().Tracker().Active()
	if len(active) == 0 {
		b.WriteString("No active challenges.")
	}
	for i, c := range active {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "├─ %s (%s) %d/%d", c.Entry.DisplayName(), c.MatchedNoun, c.StickinessRemaining, c.MaxStickiness)
		for _, mod := range c.Modifiers {
			fmt.Fprintf(&b, " [%s %+d]", mod.Name, mod.DifficultyAdjust)
		}
	}
	return stateBoxStyle.Width(m.width - 4).Render(b.String())
}

func (m *playModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(" skillcheck ")
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", inputArea, autocompleteStyle.Render(m.suggestions.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.renderState(),
		logBox,
		"",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive play session",
	Long: `Starts a terminal session where narration and player turns are typed in,
checks are rolled against the challenges the narration mentions, and level-ups
are answered as they are detected. Compendium files are reloaded when they change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, _ := cmd.Flags().GetString("transcript")

		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		if transcript != "" {
			msgs, err := session.LoadTranscript(transcript)
			if err != nil {
				return err
			}
			for _, msg := range msgs {
				if _, err := app.Observe(msg); err != nil {
					return err
				}
			}
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		reloads, err := data.Watch(ctx, app.Config().DataDirs, logger)
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		}

		m := newPlayModel(app, reloads)
		if levels, ok := app.PendingLevelUp(); ok {
			m.appendLog(fmt.Sprintf("Level up (+%d)? Answer /yes or /no.", levels))
		}
		p := tea.NewProgram(&m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("transcript", "t", "", "replay this transcript before the prompt opens")
}
