package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/reap/pkg/reap/config"
)

func newTestModel(t *testing.T) (Model, *config.Builder, string) {
	t.Helper()
	dir := t.TempDir()
	b := config.NewBuilder()
	_, err := b.SetDirs([]string{dir})
	require.NoError(t, err)
	return NewModel(b), b, dir
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// enterValue opens the editor for the menu key, replaces its content and
// presses enter.
func enterValue(m Model, key, value string) Model {
	m = press(m, key)
	m.input.SetValue(value)
	return press(m, "enter")
}

func TestMenu_SetTargets(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = enterValue(m, "2", "a.log, b.tmp ,a.log")

	assert.Equal(t, []string{"a.log", "b.tmp"}, b.Targets())
	assert.False(t, m.statusErr)
	assert.Contains(t, m.status, "a.log, b.tmp")
}

func TestMenu_SetTargetsRejected(t *testing.T) {
	m, b, _ := newTestModel(t)
	before := b.Targets()

	m = enterValue(m, "2", " , ")

	assert.Equal(t, before, b.Targets())
	assert.True(t, m.statusErr)
}

func TestMenu_SetDirs(t *testing.T) {
	m, b, dir := newTestModel(t)
	other := t.TempDir()
	missing := filepath.Join(dir, "missing")

	m = enterValue(m, "3", other+","+missing)

	assert.Equal(t, []string{other}, b.Dirs())
	assert.False(t, m.statusErr)
	assert.Contains(t, m.status, "ignored: "+missing)
}

func TestMenu_SetDirsNoneValid(t *testing.T) {
	m, b, dir := newTestModel(t)

	m = enterValue(m, "3", filepath.Join(dir, "nope"))

	assert.Equal(t, []string{dir}, b.Dirs(), "previous directories kept")
	assert.True(t, m.statusErr)
}

func TestMenu_SetInterval(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"120", 120, false},
		{"abc", config.DefaultScanInterval, true},
		{"0", config.DefaultScanInterval, true},
		{"-5", config.DefaultScanInterval, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, b, _ := newTestModel(t)
			m = enterValue(m, "4", tt.input)
			assert.Equal(t, tt.want, b.Interval())
			assert.Equal(t, tt.wantErr, m.statusErr)
		})
	}
}

func TestMenu_EscCancelsEdit(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "4")
	require.True(t, m.inputOn)
	assert.Equal(t, "3600", m.input.Value(), "editor starts with the current value")
	m.input.SetValue("5")
	m = press(m, "esc")

	assert.False(t, m.inputOn)
	assert.Equal(t, config.DefaultScanInterval, b.Interval())
}

func TestMenu_Navigation(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(m, "up")
	assert.Equal(t, 0, m.cursor)
	m = press(m, "down", "down", "j")
	assert.Equal(t, 3, m.cursor)
	m = press(m, "down", "down", "down", "down")
	assert.Equal(t, len(menuItems)-1, m.cursor)
	m = press(m, "k")
	assert.Equal(t, len(menuItems)-2, m.cursor)
}

func TestMenu_ViewConfiguration(t *testing.T) {
	m, _, dir := newTestModel(t)

	m = press(m, "1")
	view := m.View()

	assert.Contains(t, view, "diff_result.html")
	assert.Contains(t, view, dir)
	assert.Contains(t, view, "3600 seconds")
}

func TestMenu_InvalidChoice(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "9")
	assert.True(t, m.statusErr)
	assert.True(t, strings.HasPrefix(m.status, "Invalid choice"))
}

func TestMenu_StartAndQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	assert.True(t, next.(Model).Start())
	assert.NotNil(t, cmd)
	assert.Empty(t, next.(Model).View())

	m, _, _ = newTestModel(t)
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	assert.False(t, next.(Model).Start())
	assert.NotNil(t, cmd)

	m, _, _ = newTestModel(t)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.False(t, next.(Model).Start())
}

func TestMenu_ViewListsItems(t *testing.T) {
	m, _, _ := newTestModel(t)
	view := m.View()
	for _, item := range menuItems {
		assert.Contains(t, view, item.label)
	}
}
