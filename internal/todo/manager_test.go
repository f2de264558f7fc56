package todo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/store/jsonstore"
)

// memStore keeps the last saved slice and can be told to fail.
type memStore struct {
	items   []model.Item
	saves   int
	failErr error
}

func (s *memStore) Load() ([]model.Item, error) { return append([]model.Item(nil), s.items...), nil }

func (s *memStore) Save(items []model.Item) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.saves++
	s.items = append([]model.Item(nil), items...)
	return nil
}

// stepClock returns a time one minute later on every call.
func stepClock() func() time.Time {
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newManager(t *testing.T, s *memStore) *Manager {
	t.Helper()
	m, err := New(s, WithClock(stepClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestCreate_PersistsImmediately(t *testing.T) {
	t.Parallel()

	s := &memStore{}
	m := newManager(t, s)

	it, err := m.Create("  Buy milk ", "semi-skimmed", model.PriorityHigh, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.Title != "Buy milk" {
		t.Errorf("Expected trimmed title, got %q", it.Title)
	}
	if it.Status != model.StatusPending || it.Owner != "alice" {
		t.Errorf("Unexpected item: %+v", it)
	}
	if s.saves != 1 || len(s.items) != 1 || s.items[0].ID != it.ID {
		t.Errorf("Expected one save containing the item, got saves=%d items=%v", s.saves, s.items)
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		title    string
		priority model.Priority
		owner    string
	}{
		{"empty title", "   ", model.PriorityMid, "alice"},
		{"long title", strings.Repeat("x", 201), model.PriorityMid, "alice"},
		{"bad priority", "ok", model.Priority("NOW"), "alice"},
		{"no owner", "ok", model.PriorityMid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &memStore{}
			m := newManager(t, s)
			_, err := m.Create(tt.title, "", tt.priority, tt.owner)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
			if s.saves != 0 {
				t.Errorf("Expected no save on invalid input, got %d", s.saves)
			}
		})
	}
}

func TestOwnerScoping(t *testing.T) {
	t.Parallel()

	m := newManager(t, &memStore{})
	a, _ := m.Create("alice task", "", model.PriorityMid, "alice")
	_, _ = m.Create("bob task", "", model.PriorityMid, "bob")

	if got := m.ListByOwner("alice", Filter{}); len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("Expected only alice's item, got %v", got)
	}
	if _, err := m.Get(a.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign get, got %v", err)
	}
	if _, err := m.MarkCompleted(a.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign complete, got %v", err)
	}
	if err := m.Delete(a.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign delete, got %v", err)
	}
	if got, err := m.Get(a.ID, "alice"); err != nil || got.Status != model.StatusPending {
		t.Errorf("Expected alice's item untouched, got %+v, %v", got, err)
	}
}

func TestUpdate_RefreshesUpdatedAtOnly(t *testing.T) {
	t.Parallel()

	m := newManager(t, &memStore{})
	it, _ := m.Create("Write report", "", model.PriorityLow, "alice")

	title := "Write the report"
	prio := model.PriorityHigh
	got, err := m.Update(it.ID, "alice", Patch{Title: &title, Priority: &prio})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != title || got.Priority != prio {
		t.Errorf("Expected patched fields, got %+v", got)
	}
	if got.ID != it.ID || got.Owner != it.Owner || !got.CreatedAt.Equal(it.CreatedAt) {
		t.Errorf("Expected id/owner/created_at unchanged, got %+v", got)
	}
	if !got.UpdatedAt.After(it.UpdatedAt) {
		t.Errorf("Expected updated_at to advance, was %s now %s", it.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdate_InvalidPatchLeavesItem(t *testing.T) {
	t.Parallel()

	s := &memStore{}
	m := newManager(t, s)
	it, _ := m.Create("Keep me", "", model.PriorityMid, "alice")

	empty := ""
	if _, err := m.Update(it.ID, "alice", Patch{Title: &empty}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}
	got, _ := m.Get(it.ID, "alice")
	if got.Title != "Keep me" {
		t.Errorf("Expected title unchanged, got %q", got.Title)
	}
	if s.saves != 1 {
		t.Errorf("Expected only the create to be saved, got %d saves", s.saves)
	}
}

func TestMarkCompletedAndReopen(t *testing.T) {
	t.Parallel()

	m := newManager(t, &memStore{})
	it, _ := m.Create("Walk dog", "", model.PriorityMid, "alice")

	done, err := m.MarkCompleted(it.ID, "alice")
	if err != nil || done.Status != model.StatusCompleted {
		t.Fatalf("Expected COMPLETED, got %+v, %v", done, err)
	}
	if c, p := m.Stats("alice"); c != 1 || p != 0 {
		t.Errorf("Expected stats 1/0, got %d/%d", c, p)
	}
	again, err := m.Reopen(it.ID, "alice")
	if err != nil || again.Status != model.StatusPending {
		t.Fatalf("Expected PENDING, got %+v, %v", again, err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := &memStore{}
	m := newManager(t, s)
	a, _ := m.Create("a", "", model.PriorityMid, "alice")
	b, _ := m.Create("b", "", model.PriorityMid, "alice")

	if err := m.Delete(a.ID, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(s.items) != 1 || s.items[0].ID != b.ID {
		t.Errorf("Expected only b persisted, got %v", s.items)
	}
	if err := m.Delete(a.ID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSaveFailureRollsBack(t *testing.T) {
	t.Parallel()

	s := &memStore{}
	m := newManager(t, s)
	it, _ := m.Create("stays", "", model.PriorityMid, "alice")

	s.failErr = errors.New("disk full")
	if _, err := m.Create("lost", "", model.PriorityMid, "alice"); err == nil {
		t.Fatal("Expected save error")
	}
	if err := m.Delete(it.ID, "alice"); err == nil {
		t.Fatal("Expected save error")
	}
	got := m.ListByOwner("alice", Filter{})
	if len(got) != 1 || got[0].ID != it.ID {
		t.Errorf("Expected in-memory list to match last save, got %v", got)
	}
}

func TestListByOwner_FilterAndSort(t *testing.T) {
	t.Parallel()

	m := newManager(t, &memStore{})
	low, _ := m.Create("low", "", model.PriorityLow, "alice")
	high, _ := m.Create("high", "", model.PriorityHigh, "alice")
	mid, _ := m.Create("mid", "", model.PriorityMid, "alice")
	_, _ = m.MarkCompleted(mid.ID, "alice")

	sorted := m.ListByOwner("alice", Filter{SortByPriority: true})
	if len(sorted) != 3 || sorted[0].ID != high.ID || sorted[1].ID != mid.ID || sorted[2].ID != low.ID {
		t.Errorf("Expected HIGH, MID, LOW order, got %v", sorted)
	}
	pending := m.ListByOwner("alice", Filter{Status: model.StatusPending})
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending, got %d", len(pending))
	}
	onlyLow := m.ListByOwner("alice", Filter{Priority: model.PriorityLow})
	if len(onlyLow) != 1 || onlyLow[0].ID != low.ID {
		t.Errorf("Expected only the LOW item, got %v", onlyLow)
	}
}

func TestResolveID(t *testing.T) {
	t.Parallel()

	s := &memStore{items: []model.Item{
		{ID: "abc111", Title: "x", Owner: "alice"},
		{ID: "abc222", Title: "y", Owner: "alice"},
		{ID: "def333", Title: "z", Owner: "alice"},
		{ID: "xyz999", Title: "w", Owner: "bob"},
	}}
	m := newManager(t, s)

	tests := []struct {
		prefix  string
		want    string
		wantErr error
	}{
		{"abc111", "abc111", nil},
		{"d", "def333", nil},
		{"abc", "", ErrAmbiguous},
		{"xyz", "", ErrNotFound},
		{"", "", ErrNotFound},
	}
	for _, tt := range tests {
		got, err := m.ResolveID(tt.prefix, "alice")
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResolveID(%q): expected %v, got %v", tt.prefix, tt.wantErr, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveID(%q): expected %s, got %s (%v)", tt.prefix, tt.want, got, err)
		}
	}
}

func TestNew_NormalizesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	m := newManager(t, &memStore{items: []model.Item{{Title: "legacy", Owner: "alice"}}})
	got := m.ListByOwner("alice", Filter{})
	if len(got) != 1 || got[0].ID == "" || got[0].Priority != model.PriorityMid {
		t.Errorf("Expected defaults filled on load, got %+v", got)
	}

	dup := &memStore{items: []model.Item{{ID: "same", Title: "a"}, {ID: "same", Title: "b"}}}
	if _, err := New(dup); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
}

func TestManager_WithJSONStore(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "todos.json")
	m, err := New(jsonstore.New[model.Item](p, 0o644))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it, err := m.Create("persist me", "details", model.PriorityLow, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened, err := New(jsonstore.New[model.Item](p, 0o644))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(it.ID, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "persist me" || got.Details != "details" || got.Priority != model.PriorityLow {
		t.Errorf("Expected persisted fields, got %+v", got)
	}
	if !got.CreatedAt.Equal(it.CreatedAt) {
		t.Errorf("Expected created_at %s, got %s", it.CreatedAt, got.CreatedAt)
	}
}

func TestManager_LoadsLegacyTimestampFile(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "todos.json")
	legacy := `[
  {
    "id": "5d1c0f3e-8a4b-4c1e-9f7a-2b6d3e4f5a6b",
    "title": "Old entry",
    "details": "written before the rewrite",
    "priority": "HIGH",
    "status": "PENDING",
    "owner": "alice",
    "created_at": "2025-03-01T10:20:30.123456+00:00Z",
    "updated_at": "2025-03-02T08:00:00.000001+00:00Z"
  }
]`
	if err := os.WriteFile(p, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := New(jsonstore.New[model.Item](p, 0o644))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := m.Get("5d1c0f3e-8a4b-4c1e-9f7a-2b6d3e4f5a6b", "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC)
	if !got.CreatedAt.Equal(want) {
		t.Errorf("Expected created_at %s, got %s", want, got.CreatedAt)
	}
	if _, err := m.MarkCompleted(got.ID, "alice"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `"created_at": "2025-03-01T10:20:30.123456Z"`) {
		t.Errorf("Expected canonical timestamp after save, got %s", b)
	}
}
