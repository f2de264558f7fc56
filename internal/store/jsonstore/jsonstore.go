package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSON-backed storage. One file per collection, a human-readable array
// rewritten in full on every Save. No locking; one process at a time.

// ErrCorrupt is returned when the file exists but is not a JSON array of T.
var ErrCorrupt = errors.New("corrupt data file")

// Store persists a slice of T at Path.
type Store[T any] struct {
	Path string
	Perm os.FileMode
}

// New returns a store for path; perm applies to newly written files.
func New[T any](path string, perm os.FileMode) *Store[T] {
	if perm == 0 {
		perm = 0o644
	}
	return &Store[T]{Path: path, Perm: perm}
}

// Load reads every record. A missing or empty file is an empty collection.
func (s *Store[T]) Load() ([]T, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorrupt, s.Path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save replaces the file contents with items. The data is written to a
// sibling temp file first and renamed into place.
func (s *Store[T]) Save(items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Chmod(s.Perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
