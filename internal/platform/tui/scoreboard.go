package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/sisyphus/internal/highscores"
	"github.com/vovakirdan/sisyphus/internal/storage"
)

// ProgressData is everything the progress screen shows.
type ProgressData struct {
	Player       string
	Scores       []highscores.Entry[int]
	Achievements []string
	Sessions     []storage.SessionRecord
}

// progressTab is one page of the progress screen.
type progressTab int

const (
	tabScores progressTab = iota
	tabAchievements
	tabSessions
	tabCount
)

var tabTitles = [tabCount]string{"Scores", "Achievements", "Sessions"}

// ScoreboardKeyMap defines the key bindings for the progress screen.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.PrevTab, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next page"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the progress screen.
type ScoreboardModel struct {
	data      ProgressData
	tab       progressTab
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a new progress screen for data.
func NewScoreboardModel(data ProgressData, width, height int) ScoreboardModel {
	h := help.New()
	h.Width = width

	m := ScoreboardModel{
		data:   data,
		keys:   DefaultScoreboardKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	return m
}

// columns returns the table columns for the current tab.
func (m *ScoreboardModel) columns() []table.Column {
	switch m.tab {
	case tabAchievements:
		return []table.Column{{Title: "#", Width: 4}, {Title: "Achievement", Width: 30}}
	case tabSessions:
		return []table.Column{
			{Title: "Started", Width: 14},
			{Title: "Player", Width: 12},
			{Title: "Best", Width: 6},
			{Title: "Played", Width: 10},
		}
	default:
		return []table.Column{{Title: "Rank", Width: 6}, {Title: "Player", Width: 16}, {Title: "Chars", Width: 8}}
	}
}

// rows returns the table rows for the current tab.
func (m *ScoreboardModel) rows() []table.Row {
	var rows []table.Row
	switch m.tab {
	case tabAchievements:
		for i, name := range m.data.Achievements {
			rows = append(rows, table.Row{fmt.Sprintf("%d", i+1), name})
		}
	case tabSessions:
		for _, s := range m.data.Sessions {
			rows = append(rows, table.Row{
				s.StartedAt.Format("Jan 02 15:04"),
				s.User,
				fmt.Sprintf("%d", s.Best),
				s.Duration().Round(time.Second).String(),
			})
		}
	default:
		for i, e := range m.data.Scores {
			rows = append(rows, table.Row{fmt.Sprintf("#%d", i+1), e.Name, fmt.Sprintf("%d", e.Score)})
		}
	}
	return rows
}

// createTable creates the table for the current tab.
func (m *ScoreboardModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(m.rows()),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *ScoreboardModel) switchTab(delta int) {
	m.tab = progressTab((int(m.tab) + delta + int(tabCount)) % int(tabCount))
	m.table = m.createTable()
}

// Init initializes the progress screen.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the progress screen.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			m.switchTab(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.switchTab(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the progress screen.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	title := "PROGRESS"
	if m.data.Player != "" {
		title = fmt.Sprintf("PROGRESS - %s", m.data.Player)
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	tabs := make([]string, tabCount)
	for i, t := range tabTitles {
		if progressTab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(t)
		} else {
			tabs[i] = tabStyle.Render(t)
		}
	}
	b.WriteString(centerText(lipgloss.JoinHorizontal(lipgloss.Top, tabs...), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tableStyle.Render(m.renderTableContent())))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m ScoreboardModel) renderTableContent() string {
	if len(m.table.Rows()) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		msg := map[progressTab]string{
			tabScores:       "No runs recorded yet.\nType until it slips away.",
			tabAchievements: "Nothing unlocked yet.",
			tabSessions:     "No sessions recorded yet.",
		}[m.tab]
		return emptyStyle.Render(msg)
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the progress screen.
// Returns true if user wants to go back to the menu, false if quitting.
func RunScoreboard(data ProgressData, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewScoreboardModel(data, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
