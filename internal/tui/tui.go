// Package tui is the full-screen todo list. Every change goes straight
// through the todo manager, so quitting never loses work.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/todo"
	"github.com/Makepad-fr/tadakit/internal/ui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ item model.Item }

func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return i.item.Details }
func (i listItem) FilterValue() string { return i.item.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	title := it.item.Title
	if it.item.Completed() {
		title = t.Done.Render(title)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s", prefix, ui.Box(it.item.Status), ui.PriorityBadge(it.item.Priority), title)
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

var (
	addBind      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind     = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind   = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done/undo"))
	priorityBind = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority"))
	deleteBind   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
)

// Model is the Bubble Tea model for one user's list.
type Model struct {
	list  list.Model
	ti    textinput.Model
	todos *todo.Manager
	owner string

	mode   mode
	editID string
	errMsg string
}

// New builds the list model for owner.
func New(todos *todo.Manager, owner string) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	extra := func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, priorityBind, deleteBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{list: l, ti: ti, todos: todos, owner: owner}
	m.refresh()
	return m
}

// Run starts the program on the alternate screen.
func Run(todos *todo.Manager, owner string) error {
	_, err := tea.NewProgram(New(todos, owner), tea.WithAltScreen()).Run()
	return err
}

// refresh reloads the owner's items and the header counts.
func (m *Model) refresh() tea.Cmd {
	items := m.todos.ListByOwner(m.owner, todo.Filter{})
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{item: it})
	}
	done, pending := m.todos.Stats(m.owner)
	m.list.Title = ui.Header(m.owner, done, pending)
	idx := m.list.Index()
	cmd := m.list.SetItems(li)
	if idx >= len(li) {
		idx = len(li) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.item, ok
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		h := ws.Height - 4
		if m.mode != browsing {
			h -= 4
		}
		m.list.SetSize(ws.Width-4, h)
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	m.errMsg = ""
	switch km.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.list.FilterState() == list.Unfiltered {
			return m, tea.Quit
		}
	case " ":
		if it, ok := m.selected(); ok {
			var err error
			if it.Completed() {
				_, err = m.todos.Reopen(it.ID, m.owner)
			} else {
				_, err = m.todos.MarkCompleted(it.ID, m.owner)
			}
			return m.after(err)
		}
		return m, nil
	case "p":
		if it, ok := m.selected(); ok {
			next := it.Priority.Next()
			_, err := m.todos.Update(it.ID, m.owner, todo.Patch{Priority: &next})
			return m.after(err)
		}
		return m, nil
	case "d":
		if it, ok := m.selected(); ok {
			return m.after(m.todos.Delete(it.ID, m.owner))
		}
		return m, nil
	case "a":
		m.mode = adding
		m.ti.SetValue("")
		m.ti.Placeholder = "New todo title..."
		return m, m.ti.Focus()
	case "e":
		if it, ok := m.selected(); ok {
			m.mode = editing
			m.editID = it.ID
			m.ti.SetValue(it.Title)
			m.ti.CursorEnd()
			m.ti.Placeholder = "Edit todo title..."
			return m, m.ti.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.closeInput()
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.errMsg = "Title cannot be empty"
				return m, nil
			}
			var err error
			if m.mode == adding {
				_, err = m.todos.Create(title, "", model.PriorityMid, m.owner)
			} else {
				_, err = m.todos.Update(m.editID, m.owner, todo.Patch{Title: &title})
			}
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.closeInput()
			return m, m.refresh()
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.editID = ""
	m.errMsg = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

// after reports a manager error in the footer, or reloads the list.
func (m Model) after(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	return m, m.refresh()
}

func (m Model) View() string {
	content := m.list.View()
	if m.mode != browsing {
		title := "Add todo"
		if m.mode == editing {
			title = "Edit todo"
		}
		if m.errMsg != "" {
			title += " · " + ui.Current().Error.Render(m.errMsg)
		}
		bar := lipgloss.NewStyle().
			Border(ui.Current().Border).
			BorderForeground(ui.Current().BorderColor).
			Padding(0, 1)
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	} else if m.errMsg != "" {
		content += "\n" + ui.Current().Error.Render(m.errMsg)
	}
	return ui.PanelString(content)
}
