package tui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/store/jsonstore"
	"github.com/Makepad-fr/tadakit/internal/todo"
	tea "github.com/charmbracelet/bubbletea"
)

func newTodos(t *testing.T) *todo.Manager {
	t.Helper()
	m, err := todo.New(jsonstore.New[model.Item](filepath.Join(t.TempDir(), "todos.json"), 0o644))
	if err != nil {
		t.Fatalf("todo.New: %v", err)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// send feeds msgs through Update and returns the final model.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	var tm tea.Model = m
	for _, msg := range msgs {
		tm, _ = tm.Update(msg)
	}
	out, ok := tm.(Model)
	if !ok {
		t.Fatalf("Expected Model, got %T", tm)
	}
	return out
}

func sized() []tea.Msg {
	return []tea.Msg{tea.WindowSizeMsg{Width: 100, Height: 30}}
}

func TestToggleAndPriority(t *testing.T) {
	t.Parallel()

	todos := newTodos(t)
	it, err := todos.Create("Buy milk", "", model.PriorityMid, "alice")
	if err != nil {
		t.Fatal(err)
	}
	m := New(todos, "alice")
	msgs := append(sized(), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, runes("p"))
	send(t, m, msgs...)

	got, err := todos.Get(it.ID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("Expected COMPLETED after space, got %s", got.Status)
	}
	if got.Priority != model.PriorityLow {
		t.Errorf("Expected MID -> LOW after p, got %s", got.Priority)
	}
}

func TestAddAndEdit(t *testing.T) {
	t.Parallel()

	todos := newTodos(t)
	m := New(todos, "alice")

	msgs := sized()
	msgs = append(msgs, runes("a"), runes("Walk dog"), tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, msgs...)

	items := todos.ListByOwner("alice", todo.Filter{})
	if len(items) != 1 || items[0].Title != "Walk dog" {
		t.Fatalf("Expected one added todo, got %+v", items)
	}
	if m.mode != browsing {
		t.Errorf("Expected to return to browsing after add")
	}

	send(t, m, runes("e"), runes("s"), tea.KeyMsg{Type: tea.KeyEnter})
	got, _ := todos.Get(items[0].ID, "alice")
	if got.Title != "Walk dogs" {
		t.Errorf("Expected edited title 'Walk dogs', got %q", got.Title)
	}
}

func TestAddEmptyTitleShowsError(t *testing.T) {
	t.Parallel()

	todos := newTodos(t)
	m := New(todos, "alice")
	m = send(t, m, append(sized(), runes("a"), tea.KeyMsg{Type: tea.KeyEnter})...)

	if m.errMsg == "" || m.mode != adding {
		t.Errorf("Expected to stay in add mode with an error, got mode=%d err=%q", m.mode, m.errMsg)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != browsing {
		t.Error("Expected esc to cancel add")
	}
	if n := len(todos.ListByOwner("alice", todo.Filter{})); n != 0 {
		t.Errorf("Expected nothing created, got %d", n)
	}
}

func TestDeleteOnlyTouchesOwner(t *testing.T) {
	t.Parallel()

	todos := newTodos(t)
	if _, err := todos.Create("mine", "", model.PriorityMid, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := todos.Create("theirs", "", model.PriorityMid, "bob"); err != nil {
		t.Fatal(err)
	}
	m := New(todos, "alice")
	m = send(t, m, append(sized(), runes("d"))...)

	if n := len(todos.ListByOwner("alice", todo.Filter{})); n != 0 {
		t.Errorf("Expected alice's todo deleted, %d left", n)
	}
	if n := len(todos.ListByOwner("bob", todo.Filter{})); n != 1 {
		t.Errorf("Expected bob's todo untouched, got %d", n)
	}
	if !strings.Contains(m.View(), "no todos") && !strings.Contains(m.View(), "No todos") {
		t.Errorf("Expected empty list view, got:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m := New(newTodos(t), "alice")
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}
