package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/slash"
)

var (
	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	menuItemStyle     = lipgloss.NewStyle()
	menuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	menuHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// termMenu is a slash.Menu drawn as a bordered box in the terminal. Rows is
// how many items fit; the rest scroll.
type termMenu struct {
	Rows int

	items    []slash.Item
	selected int
	at       editor.Rect
	visible  bool
	offset   int
}

func newTermMenu(rows int) *termMenu {
	return &termMenu{Rows: rows}
}

// Show implements slash.Menu.
func (m *termMenu) Show(items []slash.Item, selected int, at editor.Rect) {
	m.items = items
	m.selected = selected
	m.at = at
	if !m.visible {
		m.offset = 0
	}
	m.visible = true
	m.ScrollTo(selected)
}

// Hide implements slash.Menu.
func (m *termMenu) Hide() {
	m.visible = false
	m.offset = 0
}

// ScrollTo implements slash.Menu.
func (m *termMenu) ScrollTo(i int) {
	top := slash.ScrollNearest(float64(m.offset), float64(m.Rows), float64(i), float64(i+1))
	m.offset = int(top)
}

// Destroy implements slash.Menu.
func (m *termMenu) Destroy() {
	m.Hide()
	m.items = nil
}

// Anchor returns the grid cell the menu hangs from.
func (m *termMenu) Anchor() (row, col int) {
	return int(m.at.Bottom), int(m.at.Left)
}

// View renders the visible window of items.
func (m *termMenu) View() string {
	if !m.visible || len(m.items) == 0 {
		return ""
	}
	end := m.offset + m.Rows
	if end > len(m.items) {
		end = len(m.items)
	}
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		style := menuItemStyle
		marker := "  "
		if i == m.selected {
			style = menuSelectedStyle
			marker = "> "
		}
		line := style.Render(marker+item.Title) + " " + menuHintStyle.Render(item.Description)
		lines = append(lines, line)
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}
