package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/taprunner/internal/core"
)

// MenuChoice identifies a title menu entry.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceScores
	ChoiceQuit
)

// MenuItem represents a selectable entry in the title menu.
type MenuItem struct {
	Choice MenuChoice
	Title  string
}

var defaultMenuItems = []MenuItem{
	{Choice: ChoicePlay, Title: "Play"},
	{Choice: ChoiceScores, Title: "Run history"},
	{Choice: ChoiceQuit, Title: "Quit"},
}

// MenuModel is the Bubble Tea model for the title menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	best      int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  MenuChoice

	// exitOnSelect makes a standalone menu program quit on selection.
	exitOnSelect bool
}

// NewMenuModel creates a new menu model showing the given best score.
func NewMenuModel(best int, cfg core.RuntimeConfig) MenuModel {
	return MenuModel{
		items:     defaultMenuItems,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		best:      best,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		m.cursor = core.Clamp(m.cursor-1, 0, len(m.items)-1)

	case MenuActionDown:
		m.cursor = core.Clamp(m.cursor+1, 0, len(m.items)-1)

	case MenuActionSelect:
		m.selected = m.items[m.cursor].Choice
		if m.selected == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		if m.exitOnSelect {
			return m, tea.Quit
		}
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("T A P   R U N N E R"), m.width, 19))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Best score: %d", m.best), m.width, 0))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+item.Title, m.width, 0))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(hintStyle.Render(controls), m.width, len(controls)))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen entry, ChoiceNone until the user picks one.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within width. visible is the printed length of a
// styled string, 0 means len(text).
func centerText(text string, width, visible int) string {
	if visible == 0 {
		visible = len([]rune(text))
	}
	if visible >= width {
		return text
	}
	padding := (width - visible) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Choice MenuChoice
	Config core.RuntimeConfig
}

// RunMenu runs the title menu and returns the selection.
func RunMenu(best int, cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(best, cfg)
	model.exitOnSelect = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok || m.IsQuitting() || m.Selected() == ChoiceNone {
		return MenuResult{Choice: ChoiceQuit, Config: cfg}, nil
	}
	return MenuResult{Choice: m.Selected(), Config: m.Config()}, nil
}
