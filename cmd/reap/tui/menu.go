package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

// action identifies a menu entry.
type action int

const (
	actionView action = iota
	actionTargets
	actionDirs
	actionInterval
	actionStart
	actionQuit
)

type menuItem struct {
	key    string
	label  string
	action action
}

var menuItems = []menuItem{
	{"1", "View configuration", actionView},
	{"2", "Set target files", actionTargets},
	{"3", "Set directories", actionDirs},
	{"4", "Set scan interval", actionInterval},
	{"5", "Start monitoring", actionStart},
	{"0", "Quit", actionQuit},
}

// Model is the Bubble Tea model for the configuration menu. Every edit
// goes through the Builder, so a rejected value leaves the previous one
// in place.
type Model struct {
	builder *config.Builder

	cursor   int
	editing  action
	input    textinput.Model
	inputOn  bool
	showView bool

	status    string
	statusErr bool

	start bool
	done  bool
}

// NewModel returns a menu editing b.
func NewModel(b *config.Builder) Model {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60

	return Model{builder: b, input: ti}
}

// Run shows the menu and reports whether the user chose to start
// monitoring.
func Run(b *config.Builder) (bool, error) {
	final, err := tea.NewProgram(NewModel(b)).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.start, nil
}

// Start reports whether the user chose "Start monitoring".
func (m Model) Start() bool {
	return m.start
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.inputOn {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if key.Type == tea.KeyCtrlC {
		m.done = true
		return m, tea.Quit
	}

	if m.inputOn {
		return m.updateInput(key)
	}
	return m.updateMenu(key)
}

func (m Model) updateMenu(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
		return m, nil
	case "q", "esc":
		return m.choose(actionQuit)
	case "enter":
		return m.choose(menuItems[m.cursor].action)
	}

	for i, item := range menuItems {
		if key.String() == item.key {
			m.cursor = i
			return m.choose(item.action)
		}
	}

	m.setStatus("Invalid choice, try again", true)
	return m, nil
}

func (m Model) choose(a action) (tea.Model, tea.Cmd) {
	m.status = ""
	switch a {
	case actionView:
		m.showView = !m.showView
		return m, nil
	case actionStart:
		m.start = true
		m.done = true
		return m, tea.Quit
	case actionQuit:
		m.done = true
		return m, tea.Quit
	}

	m.editing = a
	m.inputOn = true
	m.input.SetValue(m.currentValue(a))
	m.input.CursorEnd()
	m.input.Placeholder = placeholder(a)
	return m, m.input.Focus()
}

func (m Model) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.inputOn = false
		m.input.Blur()
		m.setStatus("Unchanged", false)
		return m, nil
	case tea.KeyEnter:
		m.apply(m.editing, m.input.Value())
		m.inputOn = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// apply pushes value through the Builder setter for a.
func (m *Model) apply(a action, value string) {
	switch a {
	case actionTargets:
		if err := m.builder.SetTargetsString(value); err != nil {
			m.setStatus(fmt.Sprintf("Error: %v (kept %s)", err, strings.Join(m.builder.Targets(), ", ")), true)
			return
		}
		m.setStatus("Target files set: "+strings.Join(m.builder.Targets(), ", "), false)

	case actionDirs:
		dropped, err := m.builder.SetDirsString(value)
		if err != nil {
			m.setStatus(fmt.Sprintf("Error: %v (kept %s)", err, strings.Join(m.builder.Dirs(), ", ")), true)
			return
		}
		msg := "Directories set: " + strings.Join(m.builder.Dirs(), ", ")
		if len(dropped) > 0 {
			msg += " (ignored: " + strings.Join(dropped, ", ") + ")"
		}
		m.setStatus(msg, false)

	case actionInterval:
		if err := m.builder.SetIntervalString(value); err != nil {
			m.setStatus(fmt.Sprintf("Error: %v (kept %d seconds)", err, m.builder.Interval()), true)
			return
		}
		m.setStatus(fmt.Sprintf("Scan interval set: %d seconds", m.builder.Interval()), false)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) currentValue(a action) string {
	switch a {
	case actionTargets:
		return strings.Join(m.builder.Targets(), ",")
	case actionDirs:
		return strings.Join(m.builder.Dirs(), ",")
	case actionInterval:
		return strconv.Itoa(m.builder.Interval())
	}
	return ""
}

func placeholder(a action) string {
	switch a {
	case actionTargets:
		return "file names, comma separated"
	case actionDirs:
		return "directories, comma separated"
	case actionInterval:
		return "seconds"
	}
	return ""
}

// View renders the menu.
func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("REAP") + mutedTextStyle.Render("  file monitor menu"))
	b.WriteString("\n\n")

	for i, item := range menuItems {
		line := fmt.Sprintf(" %s. %s ", item.key, item.label)
		if i == m.cursor && !m.inputOn {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(normalItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.showView {
		b.WriteString("\n")
		b.WriteString(m.renderConfig())
	}

	if m.inputOn {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(menuItems[m.cursor].label+":") + "\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(mutedTextStyle.Render("enter: apply  esc: cancel"))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorTextStyle.Render(m.status))
		} else {
			b.WriteString(successTextStyle.Render(m.status))
		}
	}

	if !m.inputOn {
		b.WriteString("\n")
		b.WriteString(mutedTextStyle.Render("↑/↓ or 0-5 to choose, enter to select, q to quit"))
	}

	return outerBoxStyle.Render(b.String())
}

func (m Model) renderConfig() string {
	rows := []struct{ label, value string }{
		{"Target files", strings.Join(m.builder.Targets(), ", ")},
		{"Directories", strings.Join(m.builder.Dirs(), ", ")},
		{"Scan interval", fmt.Sprintf("%d seconds", m.builder.Interval())},
	}

	var b strings.Builder
	for _, r := range rows {
		value := r.value
		if value == "" {
			value = errorTextStyle.Render("(none)")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", r.label)) + " " + value + "\n")
	}
	return b.String()
}
