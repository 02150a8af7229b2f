// Package store keeps completed analyses available for retrieval and
// follow-up queries, bounded by TTL and entry count.
package store

import (
	"log/slog"
	"sync"
	"time"

	"finsight/pkg/contracts/domain"
)

// AnalysisStore is the handler-facing interface.
type AnalysisStore interface {
	Put(result *domain.AnalysisResult)
	Get(id string) (*domain.AnalysisResult, bool)
	Delete(id string)
	Len() int
}

type entry struct {
	result   *domain.AnalysisResult
	storedAt time.Time
}

// Memory is an in-memory AnalysisStore. Entries expire after the TTL;
// when the entry cap is hit the oldest entry is evicted first. Expired
// entries are dropped lazily on read and in bulk by Sweep.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger
}

// NewMemory creates a bounded in-memory store.
func NewMemory(ttl time.Duration, maxEntries int, logger *slog.Logger) *Memory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Put stores a result under its ID, evicting the oldest entry if the
// store is full.
func (m *Memory) Put(result *domain.AnalysisResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[result.ID]; !exists && len(m.entries) >= m.maxEntries {
		m.evictOldestLocked()
	}
	m.entries[result.ID] = entry{result: result, storedAt: time.Now()}
}

// Get returns a stored result; expired entries read as absent.
func (m *Memory) Get(id string) (*domain.AnalysisResult, bool) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > m.ttl {
		m.Delete(id)
		return nil, false
	}
	return e.result, true
}

// Delete removes an entry.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// Len returns the current entry count, expired entries included until
// the next sweep.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep drops all expired entries and returns how many were removed.
// The scheduler calls this periodically.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, e := range m.entries {
		if now.Sub(e.storedAt) > m.ttl {
			delete(m.entries, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("analysis store swept",
			slog.Int("removed", removed),
			slog.Int("remaining", len(m.entries)))
	}
	return removed
}

func (m *Memory) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, e := range m.entries {
		if oldestID == "" || e.storedAt.Before(oldestAt) {
			oldestID, oldestAt = id, e.storedAt
		}
	}
	if oldestID != "" {
		delete(m.entries, oldestID)
	}
}
