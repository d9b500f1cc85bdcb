package cache

import (
	"context"
	"sync"
	"time"

	"github.com/natalia11920/pairpay/internal/models"
)

var _ BalanceCache = (*Memory)(nil)

type memoryEntry struct {
	version   int64
	sheet     *models.BalanceSheet
	expiresAt time.Time
}

// Memory is an in-process BalanceCache.
type Memory struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	versions map[int64]int64
	entries  map[int64]memoryEntry
}

// NewMemory creates an in-process cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:      ttl,
		now:      time.Now,
		versions: make(map[int64]int64),
		entries:  make(map[int64]memoryEntry),
	}
}

func (m *Memory) Version(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[userID], nil
}

func (m *Memory) Get(_ context.Context, userID, version int64) (*models.BalanceSheet, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok || e.version != version || e.version != m.versions[userID] {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, userID)
		return nil, false, nil
	}
	return e.sheet, true, nil
}

// Set stores sheet only if version is still current.
func (m *Memory) Set(_ context.Context, userID, version int64, sheet *models.BalanceSheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if version != m.versions[userID] {
		return nil
	}
	m.entries[userID] = memoryEntry{
		version:   version,
		sheet:     sheet,
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, userIDs ...int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range userIDs {
		m.versions[id]++
		delete(m.entries, id)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
