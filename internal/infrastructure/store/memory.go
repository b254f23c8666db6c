package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store with an in-process map.
//
// It mirrors SQLiteStore's semantics exactly (path replacement, subtree
// deletion, key-ascending child listings) and is used where adapters are
// exercised without a database: unit tests and ephemeral deployments.
//
// Thread Safety: all methods are safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[string]json.RawMessage)}
}

// Get returns the raw JSON value at the exact path.
func (s *MemoryStore) Get(_ context.Context, path string) (json.RawMessage, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return value, nil
}

// Set writes value at path, replacing the node and anything beneath it.
func (s *MemoryStore) Set(_ context.Context, path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling value for %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteSubtreeLocked(path)
	s.nodes[path] = raw
	return nil
}

// Merge applies fields onto the object stored at path.
func (s *MemoryStore) Merge(_ context.Context, path string, fields map[string]any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]any, len(fields))
	if existing, ok := s.nodes[path]; ok {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return fmt.Errorf("%w: %s", ErrNotObject, path)
		}
	}
	for k, v := range fields {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshalling merged value for %s: %w", path, err)
	}

	s.nodes[path] = raw
	return nil
}

// Delete removes the node at path and its entire subtree.
func (s *MemoryStore) Delete(_ context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteSubtreeLocked(path)
	return nil
}

// Children returns the direct children of path ordered ascending by key.
func (s *MemoryStore) Children(_ context.Context, path string, lastN int) ([]Entry, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := path + "/"
	entries := []Entry{}
	for p, v := range s.nodes {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		key := p[len(prefix):]
		if strings.Contains(key, "/") {
			continue // deeper descendant, not a direct child
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	if lastN > 0 && len(entries) > lastN {
		entries = entries[len(entries)-lastN:]
	}

	return entries, nil
}

// deleteSubtreeLocked removes path and all descendants. Caller holds mu.
func (s *MemoryStore) deleteSubtreeLocked(path string) {
	delete(s.nodes, path)
	prefix := path + "/"
	for p := range s.nodes {
		if strings.HasPrefix(p, prefix) {
			delete(s.nodes, p)
		}
	}
}
