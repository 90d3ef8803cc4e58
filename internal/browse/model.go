// Package browse is an interactive terminal browser for a settings tree.
//
// The browser lists the children of the current node, one row per
// sibling, and shows the value and attributes of the selected child.
// Descending pushes the current position on a stack so going back
// restores the previous selection.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// Item is one row of the child list.
type Item struct {
	Name  string
	Index int
	// Count is the length of the sibling sequence the item belongs to.
	Count int
}

// Label returns the row text, with an index only for repeated names.
func (i Item) Label() string {
	if i.Count > 1 {
		return fmt.Sprintf("%s[%d]", i.Name, i.Index)
	}
	return i.Name
}

type frame struct {
	cursor   settings.Cursor
	selected int
}

type styles struct {
	title    lipgloss.Style
	path     lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	key      lipgloss.Style
	errText  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		path:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		muted:    lipgloss.NewStyle().Faint(true),
		key:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Model implements tea.Model for browsing a settings document.
type Model struct {
	doc      *settings.Document
	current  settings.Cursor
	items    []Item
	selected int
	stack    []frame

	keys   KeyMap
	help   help.Model
	styles styles

	width  int
	height int
}

// New returns a browser positioned on the root of doc.
func New(doc *settings.Document) Model {
	m := Model{
		doc:    doc,
		keys:   DefaultKeyMap,
		help:   help.New(),
		styles: newStyles(),
	}
	m.moveTo(doc.Root(), 0)
	return m
}

// Current returns the cursor on the node whose children are listed.
func (m Model) Current() settings.Cursor {
	return m.current
}

// Items returns the rows of the child list.
func (m Model) Items() []Item {
	return m.items
}

// Selected returns the index of the highlighted row.
func (m Model) Selected() int {
	return m.selected
}

// SelectedCursor returns a cursor on the highlighted child. It is invalid
// when the current node has no children.
func (m Model) SelectedCursor() settings.Cursor {
	if len(m.items) == 0 {
		return settings.Cursor{}
	}
	it := m.items[m.selected]
	return m.current.EnterNode(it.Name, it.Index)
}

// Depth returns how many levels below the root the browser is.
func (m Model) Depth() int {
	return len(m.stack)
}

func (m *Model) moveTo(c settings.Cursor, selected int) {
	m.current = c
	m.items = nil
	for _, name := range c.ChildNames() {
		count := c.Count(name)
		for i := range count {
			m.items = append(m.items, Item{Name: name, Index: i, Count: count})
		}
	}
	m.selected = clamp(selected, len(m.items))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.selected = clamp(m.selected-1, len(m.items))
		case key.Matches(msg, m.keys.Down):
			m.selected = clamp(m.selected+1, len(m.items))
		case key.Matches(msg, m.keys.Top):
			m.selected = 0
		case key.Matches(msg, m.keys.Bottom):
			m.selected = clamp(len(m.items)-1, len(m.items))
		case key.Matches(msg, m.keys.Enter):
			m.descend()
		case key.Matches(msg, m.keys.Back):
			m.ascend()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m *Model) descend() {
	child := m.SelectedCursor()
	if !child.Valid() || len(child.ChildNames()) == 0 {
		return
	}
	m.stack = append(m.stack, frame{cursor: m.current, selected: m.selected})
	m.moveTo(child, 0)
}

func (m *Model) ascend() {
	if len(m.stack) == 0 {
		return
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.moveTo(top.cursor, top.selected)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("cjmtoolkit settings"))
	b.WriteString("  ")
	b.WriteString(m.styles.muted.Render(m.doc.FileName()))
	b.WriteString("\n")
	if m.doc.Status() != settings.StatusNoError {
		b.WriteString(m.styles.errText.Render(fmt.Sprintf("%s: %v", m.doc.Status(), m.doc.Err())))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.path.Render(m.current.Path()))
	b.WriteString("\n\n")

	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) listView() string {
	if len(m.items) == 0 {
		return m.styles.muted.Render("  (no children)") + "\n"
	}

	first, last := m.visibleRange()
	var b strings.Builder
	for i := first; i < last; i++ {
		label := m.items[i].Label()
		if i == m.selected {
			b.WriteString(m.styles.selected.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// visibleRange returns the rows that fit the terminal, keeping the
// selection in view.
func (m Model) visibleRange() (int, int) {
	n := len(m.items)
	rows := m.height - 12
	if m.height == 0 || rows >= n {
		return 0, n
	}
	if rows < 1 {
		rows = 1
	}
	first := m.selected - rows/2
	first = max(0, min(first, n-rows))
	return first, first + rows
}

func (m Model) detailView() string {
	c := m.SelectedCursor()
	if !c.Valid() {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.key.Render("value"))
	b.WriteString(": ")
	if v := c.Value(); v != "" {
		b.WriteString(v)
	} else {
		b.WriteString(m.styles.muted.Render("(empty)"))
	}
	b.WriteString("\n")

	for _, name := range c.AttributeNames() {
		b.WriteString(m.styles.key.Render("@" + name))
		b.WriteString(": ")
		b.WriteString(c.Attribute(name))
		b.WriteString("\n")
	}
	if children := c.ChildNames(); len(children) > 0 {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("%d child name(s): %s", len(children), strings.Join(children, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}
