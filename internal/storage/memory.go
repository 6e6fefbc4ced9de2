package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Memory is an in-process Backend. It backs tests and throwaway worlds.
type Memory struct {
	mu      sync.Mutex
	records map[int64]Record
	meta    map[string][]byte
	backups map[string]Snapshot
	order   []string
	// FailApply, when set, makes the next Apply fail with it.
	FailApply error
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{
		records: map[int64]Record{},
		meta:    map[string][]byte{},
		backups: map[string]Snapshot{},
	}
}

// Load implements Backend.
func (m *Memory) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

func (m *Memory) snapshot() Snapshot {
	s := Snapshot{Meta: maps.Clone(m.meta)}
	for _, r := range m.records {
		r.Data = slices.Clone(r.Data)
		s.Records = append(s.Records, r)
	}
	SortRecords(s.Records)
	return s
}

// Apply implements Backend.
func (m *Memory) Apply(ctx context.Context, b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailApply; err != nil {
		m.FailApply = nil
		return err
	}
	for _, r := range b.Put {
		r.Data = slices.Clone(r.Data)
		m.records[r.ID] = r
	}
	for _, id := range b.Delete {
		delete(m.records, id)
	}
	for k, v := range b.Meta {
		m.meta[k] = slices.Clone(v)
	}
	return nil
}

// Backup implements Backend.
func (m *Memory) Backup(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := fmt.Sprintf("backup-%04d", len(m.order)+1)
	m.backups[name] = m.snapshot()
	m.order = append(m.order, name)
	return name, nil
}

// Backups implements Backend.
func (m *Memory) Backups(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order), nil
}

// Restore implements Backend.
func (m *Memory) Restore(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		if len(m.order) == 0 {
			return ErrNoBackup
		}
		name = m.order[len(m.order)-1]
	}
	s, ok := m.backups[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoBackup, name)
	}
	m.records = map[int64]Record{}
	for _, r := range s.Records {
		m.records[r.ID] = r
	}
	m.meta = maps.Clone(s.Meta)
	if m.meta == nil {
		m.meta = map[string][]byte{}
	}
	return nil
}

// Reset implements Backend.
func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = map[int64]Record{}
	m.meta = map[string][]byte{}
	return nil
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }
