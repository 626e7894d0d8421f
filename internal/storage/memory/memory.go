// Package memory implements an in-process storage backend for tests and for
// library callers that do not want a database file.
package memory

import (
	"context"
	"iter"
	"sync"

	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
)

var _ storage.Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps records in insertion order with a key index.
type MemoryStorage struct {
	mu sync.RWMutex

	menu      []*types.MenuItem
	menuIndex map[string]int

	qa      []*types.QAEntry
	qaIndex map[string]int

	metadata map[string]string
	closed   bool
}

// New creates an empty store.
func New() *MemoryStorage {
	return &MemoryStorage{
		menuIndex: make(map[string]int),
		qaIndex:   make(map[string]int),
		metadata:  make(map[string]string),
	}
}

func (m *MemoryStorage) checkOpen() error {
	if m.closed {
		return errClosed
	}
	return nil
}

// UpsertMenuItem applies the last-write-wins rule for item.Name.
func (m *MemoryStorage) UpsertMenuItem(ctx context.Context, item *types.MenuItem) (storage.Outcome, error) {
	if err := types.ValidateMenuItem(item); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return 0, err
	}

	stored := *item
	stored.UpdatedAt = types.Truncate(item.UpdatedAt)

	idx, ok := m.menuIndex[item.Name]
	if !ok {
		m.menuIndex[item.Name] = len(m.menu)
		m.menu = append(m.menu, &stored)
		return storage.OutcomeInserted, nil
	}
	if !types.Supersedes(item.UpdatedAt, types.FormatTimestamp(m.menu[idx].UpdatedAt)) {
		return storage.OutcomeUnchanged, nil
	}
	m.menu[idx] = &stored
	return storage.OutcomeReplaced, nil
}

// GetMenuItem returns a copy of the item stored under name.
func (m *MemoryStorage) GetMenuItem(ctx context.Context, name string) (*types.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkOpen(); err != nil {
		return nil, err
	}

	idx, ok := m.menuIndex[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	item := *m.menu[idx]
	return &item, nil
}

// DeleteMenuItem removes name if present.
func (m *MemoryStorage) DeleteMenuItem(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}

	idx, ok := m.menuIndex[name]
	if !ok {
		return nil
	}
	m.menu = append(m.menu[:idx], m.menu[idx+1:]...)
	delete(m.menuIndex, name)
	for i := idx; i < len(m.menu); i++ {
		m.menuIndex[m.menu[i].Name] = i
	}
	return nil
}

// ListMenuItems yields copies of a snapshot taken when ranging starts.
func (m *MemoryStorage) ListMenuItems(ctx context.Context) iter.Seq2[*types.MenuItem, error] {
	return func(yield func(*types.MenuItem, error) bool) {
		m.mu.RLock()
		if err := m.checkOpen(); err != nil {
			m.mu.RUnlock()
			yield(nil, err)
			return
		}
		snapshot := make([]types.MenuItem, len(m.menu))
		for i, item := range m.menu {
			snapshot[i] = *item
		}
		m.mu.RUnlock()

		for i := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&snapshot[i], nil) {
				return
			}
		}
	}
}

// CountMenuItems returns the number of stored items.
func (m *MemoryStorage) CountMenuItems(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	return len(m.menu), nil
}

// UpsertQA applies the last-write-wins rule for entry.Question.
func (m *MemoryStorage) UpsertQA(ctx context.Context, entry *types.QAEntry) (storage.Outcome, error) {
	if err := types.ValidateQA(entry); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return 0, err
	}

	stored := *entry
	stored.UpdatedAt = types.Truncate(entry.UpdatedAt)

	idx, ok := m.qaIndex[entry.Question]
	if !ok {
		m.qaIndex[entry.Question] = len(m.qa)
		m.qa = append(m.qa, &stored)
		return storage.OutcomeInserted, nil
	}
	if !types.Supersedes(entry.UpdatedAt, types.FormatTimestamp(m.qa[idx].UpdatedAt)) {
		return storage.OutcomeUnchanged, nil
	}
	m.qa[idx] = &stored
	return storage.OutcomeReplaced, nil
}

// GetQA returns a copy of the entry stored under question.
func (m *MemoryStorage) GetQA(ctx context.Context, question string) (*types.QAEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkOpen(); err != nil {
		return nil, err
	}

	idx, ok := m.qaIndex[question]
	if !ok {
		return nil, storage.ErrNotFound
	}
	entry := *m.qa[idx]
	return &entry, nil
}

// DeleteQA removes question if present.
func (m *MemoryStorage) DeleteQA(ctx context.Context, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}

	idx, ok := m.qaIndex[question]
	if !ok {
		return nil
	}
	m.qa = append(m.qa[:idx], m.qa[idx+1:]...)
	delete(m.qaIndex, question)
	for i := idx; i < len(m.qa); i++ {
		m.qaIndex[m.qa[i].Question] = i
	}
	return nil
}

// ListQA yields copies of a snapshot taken when ranging starts.
func (m *MemoryStorage) ListQA(ctx context.Context) iter.Seq2[*types.QAEntry, error] {
	return func(yield func(*types.QAEntry, error) bool) {
		m.mu.RLock()
		if err := m.checkOpen(); err != nil {
			m.mu.RUnlock()
			yield(nil, err)
			return
		}
		snapshot := make([]types.QAEntry, len(m.qa))
		for i, entry := range m.qa {
			snapshot[i] = *entry
		}
		m.mu.RUnlock()

		for i := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&snapshot[i], nil) {
				return
			}
		}
	}
}

// CountQA returns the number of stored entries.
func (m *MemoryStorage) CountQA(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	return len(m.qa), nil
}

// SetMetadata stores a key/value pair.
func (m *MemoryStorage) SetMetadata(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}
	m.metadata[key] = value
	return nil
}

// GetMetadata returns the value for key, or "" when unset.
func (m *MemoryStorage) GetMetadata(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkOpen(); err != nil {
		return "", err
	}
	return m.metadata[key], nil
}

// Close marks the store closed. Later calls fail.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Path returns a descriptive name; there is no backing file.
func (m *MemoryStorage) Path() string {
	return ":memory:"
}
