package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is how urgent a todo entry is.
type Priority string

const (
	PriorityHigh Priority = "HIGH"
	PriorityMid  Priority = "MID"
	PriorityLow  Priority = "LOW"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMid, PriorityLow}

// ParsePriority accepts the canonical names in any case plus the H/M/L short forms.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH", "H":
		return PriorityHigh, nil
	case "MID", "M", "MEDIUM":
		return PriorityMid, nil
	case "LOW", "L":
		return PriorityLow, nil
	}
	return "", fmt.Errorf("invalid priority: %q (must be HIGH, MID or LOW)", s)
}

// Rank orders priorities for sorting: HIGH=0, MID=1, LOW=2, unknown last.
func (p Priority) Rank() int {
	for i, q := range Priorities {
		if p == q {
			return i
		}
	}
	return len(Priorities)
}

// Next cycles HIGH -> MID -> LOW -> HIGH.
func (p Priority) Next() Priority {
	return Priorities[(p.Rank()+1)%len(Priorities)]
}

func (p *Priority) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = ""
		return nil
	}
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Status is the lifecycle state of a todo entry.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus accepts PENDING/COMPLETED in any case, plus "done" and "todo".
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING", "TODO", "P":
		return StatusPending, nil
	case "COMPLETED", "DONE", "C":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status: %q (must be PENDING or COMPLETED)", s)
}

func (s *Status) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ""
		return nil
	}
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Item is the domain model for a todo entry.
// ID and Owner never change once the item exists.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required,max=200"`
	Details   string    `json:"details" validate:"max=2000"`
	Priority  Priority  `json:"priority" validate:"required,priority"`
	Status    Status    `json:"status" validate:"required,status"`
	Owner     string    `json:"owner" validate:"required,username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem builds a pending item owned by owner with a fresh ID.
func NewItem(title, details string, priority Priority, owner string, now time.Time) Item {
	if priority == "" {
		priority = PriorityMid
	}
	now = now.UTC()
	return Item{
		ID:        uuid.NewString(),
		Title:     title,
		Details:   details,
		Priority:  priority,
		Status:    StatusPending,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Completed reports whether the item is done.
func (it Item) Completed() bool { return it.Status == StatusCompleted }

// Normalize fills in defaults for fields an older or hand-edited file may
// omit. It reports whether anything changed.
func (it *Item) Normalize(now time.Time) bool {
	changed := false
	now = now.UTC()
	if it.ID == "" {
		it.ID = uuid.NewString()
		changed = true
	}
	if it.Priority == "" {
		it.Priority = PriorityMid
		changed = true
	}
	if it.Status == "" {
		it.Status = StatusPending
		changed = true
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
		changed = true
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
		changed = true
	}
	return changed
}

// itemJSON is the on-disk shape; owner is written as null when unset.
type itemJSON struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Details   string   `json:"details"`
	Priority  Priority `json:"priority"`
	Status    Status   `json:"status"`
	Owner     *string  `json:"owner"`
	CreatedAt *string  `json:"created_at"`
	UpdatedAt *string  `json:"updated_at"`
}

// stampLayouts are tried in order. Naive stamps are read as UTC.
var stampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

// parseStamp reads an ISO-8601 timestamp. Older files append a Z to an
// explicit offset ("+00:00Z"); the trailing Z is dropped in that case.
func parseStamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if strings.HasSuffix(s, "Z") && len(s) > 7 {
		if off := s[len(s)-7 : len(s)-1]; (off[0] == '+' || off[0] == '-') && off[3] == ':' {
			s = s[:len(s)-1]
		}
	}
	var firstErr error
	for _, layout := range stampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func formatStamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func (it Item) MarshalJSON() ([]byte, error) {
	out := itemJSON{
		ID:       it.ID,
		Title:    it.Title,
		Details:  it.Details,
		Priority: it.Priority,
		Status:   it.Status,
	}
	if it.Owner != "" {
		owner := it.Owner
		out.Owner = &owner
	}
	out.CreatedAt = formatStamp(it.CreatedAt)
	out.UpdatedAt = formatStamp(it.UpdatedAt)
	return json.Marshal(out)
}

func (it *Item) UnmarshalJSON(b []byte) error {
	var in itemJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*it = Item{
		ID:       in.ID,
		Title:    in.Title,
		Details:  in.Details,
		Priority: in.Priority,
		Status:   in.Status,
	}
	if in.Owner != nil {
		it.Owner = *in.Owner
	}
	var err error
	if in.CreatedAt != nil {
		if it.CreatedAt, err = parseStamp(*in.CreatedAt); err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
	}
	if in.UpdatedAt != nil {
		if it.UpdatedAt, err = parseStamp(*in.UpdatedAt); err != nil {
			return fmt.Errorf("updated_at: %w", err)
		}
	}
	return nil
}
