// Package todo holds the per-user todo list: create, read, update and
// delete over an in-memory slice that is written back to the store after
// every change.
package todo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/validation"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("todo not found")
	ErrAmbiguous   = errors.New("ambiguous id prefix")
	ErrInvalid     = errors.New("invalid todo")
	ErrDuplicateID = errors.New("duplicate todo id")
)

// Store is where the manager reads and writes the full item list.
type Store interface {
	Load() ([]model.Item, error)
	Save([]model.Item) error
}

// Patch lists the fields an owner may change. Nil fields are left alone.
// ID and Owner are deliberately absent.
type Patch struct {
	Title    *string
	Details  *string
	Priority *model.Priority
	Status   *model.Status
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Details == nil && p.Priority == nil && p.Status == nil
}

// Filter narrows ListByOwner. Zero values match everything.
type Filter struct {
	Status         model.Status
	Priority       model.Priority
	SortByPriority bool
}

type Manager struct {
	store Store
	items []model.Item
	now   func() time.Time
	log   *zap.Logger
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// New loads every item from store once.
func New(store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store: store,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}

	items, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if items[i].Normalize(m.now()) {
			m.log.Debug("filled missing todo fields", zap.String("id", items[i].ID))
		}
		if _, dup := seen[items[i].ID]; dup {
			return nil, fmt.Errorf("load todos: %w: %s", ErrDuplicateID, items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
	}
	m.items = items
	m.log.Debug("todos loaded", zap.Int("count", len(items)))
	return m, nil
}

// Create appends a new pending item owned by owner and persists it.
func (m *Manager) Create(title, details string, priority model.Priority, owner string) (model.Item, error) {
	item := model.NewItem(
		validation.SanitizeText(title),
		validation.SanitizeText(details),
		priority,
		owner,
		m.now(),
	)
	if err := validation.Struct(item); err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	next := append(slices.Clone(m.items), item)
	if err := m.commit(next); err != nil {
		return model.Item{}, err
	}
	m.log.Debug("todo created", zap.String("id", item.ID), zap.String("owner", owner))
	return item, nil
}

// ListByOwner returns copies of owner's items in insertion order, or sorted
// by priority (stable) when the filter asks for it.
func (m *Manager) ListByOwner(owner string, f Filter) []model.Item {
	out := make([]model.Item, 0)
	for _, it := range m.items {
		if it.Owner != owner {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.Priority != "" && it.Priority != f.Priority {
			continue
		}
		out = append(out, it)
	}
	if f.SortByPriority {
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	}
	return out
}

// Get returns the item only when both id and owner match. Someone else's
// item is reported exactly like a missing one.
func (m *Manager) Get(id, owner string) (model.Item, error) {
	i := m.indexOf(id, owner)
	if i < 0 {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.items[i], nil
}

// ResolveID expands a unique ID prefix among owner's items.
func (m *Manager) ResolveID(prefix, owner string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if m.indexOf(prefix, owner) >= 0 {
		return prefix, nil
	}
	var match string
	n := 0
	for _, it := range m.items {
		if it.Owner == owner && strings.HasPrefix(it.ID, prefix) {
			match = it.ID
			n++
		}
	}
	switch n {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return match, nil
	}
	return "", fmt.Errorf("%w: %s matches %d todos", ErrAmbiguous, prefix, n)
}

// Update applies p to the owner's item and refreshes UpdatedAt.
func (m *Manager) Update(id, owner string, p Patch) (model.Item, error) {
	i := m.indexOf(id, owner)
	if i < 0 {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	it := m.items[i]
	if p.Title != nil {
		it.Title = validation.SanitizeText(*p.Title)
	}
	if p.Details != nil {
		it.Details = validation.SanitizeText(*p.Details)
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	it.UpdatedAt = m.now().UTC()
	if err := validation.Struct(it); err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	next := slices.Clone(m.items)
	next[i] = it
	if err := m.commit(next); err != nil {
		return model.Item{}, err
	}
	m.log.Debug("todo updated", zap.String("id", id), zap.String("owner", owner))
	return it, nil
}

func (m *Manager) MarkCompleted(id, owner string) (model.Item, error) {
	s := model.StatusCompleted
	return m.Update(id, owner, Patch{Status: &s})
}

func (m *Manager) Reopen(id, owner string) (model.Item, error) {
	s := model.StatusPending
	return m.Update(id, owner, Patch{Status: &s})
}

// Delete removes the owner's item and persists the shorter list.
func (m *Manager) Delete(id, owner string) error {
	i := m.indexOf(id, owner)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := slices.Delete(slices.Clone(m.items), i, i+1)
	if err := m.commit(next); err != nil {
		return err
	}
	m.log.Debug("todo deleted", zap.String("id", id), zap.String("owner", owner))
	return nil
}

// Stats counts owner's completed and pending items.
func (m *Manager) Stats(owner string) (completed, pending int) {
	for _, it := range m.items {
		if it.Owner != owner {
			continue
		}
		if it.Completed() {
			completed++
		} else {
			pending++
		}
	}
	return
}

func (m *Manager) indexOf(id, owner string) int {
	for i, it := range m.items {
		if it.ID == id && it.Owner == owner {
			return i
		}
	}
	return -1
}

// commit saves next and only then makes it the current list, so a failed
// write leaves memory matching the file.
func (m *Manager) commit(next []model.Item) error {
	if err := m.store.Save(next); err != nil {
		m.log.Warn("saving todos failed", zap.Error(err))
		return fmt.Errorf("save todos: %w", err)
	}
	m.items = next
	return nil
}
