package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/pkg/contracts/domain"
)

func result(id string) *domain.AnalysisResult {
	return &domain.AnalysisResult{ID: id, Status: domain.AnalysisStatusComplete}
}

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory(time.Minute, 10, nil)

	m.Put(result("a"))

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory(10*time.Millisecond, 10, nil)

	m.Put(result("a"))
	time.Sleep(25 * time.Millisecond)

	_, ok := m.Get("a")
	assert.False(t, ok)
	// The lazy read also removed the entry.
	assert.Equal(t, 0, m.Len())
}

func TestMemory_EvictsOldestWhenFull(t *testing.T) {
	m := NewMemory(time.Minute, 2, nil)

	m.Put(result("first"))
	time.Sleep(2 * time.Millisecond)
	m.Put(result("second"))
	time.Sleep(2 * time.Millisecond)
	m.Put(result("third"))

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get("first")
	assert.False(t, ok)
	_, ok = m.Get("second")
	assert.True(t, ok)
	_, ok = m.Get("third")
	assert.True(t, ok)
}

func TestMemory_OverwriteDoesNotEvict(t *testing.T) {
	m := NewMemory(time.Minute, 2, nil)

	m.Put(result("a"))
	m.Put(result("b"))
	m.Put(result("a"))

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get("b")
	assert.True(t, ok)
}

func TestMemory_Sweep(t *testing.T) {
	m := NewMemory(10*time.Millisecond, 10, nil)

	m.Put(result("old1"))
	m.Put(result("old2"))
	time.Sleep(25 * time.Millisecond)
	m.Put(result("fresh"))

	removed := m.Sweep()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("fresh")
	assert.True(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory(time.Minute, 10, nil)
	m.Put(result("a"))
	m.Delete("a")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_DefaultsApplied(t *testing.T) {
	m := NewMemory(0, 0, nil)
	for i := 0; i < 150; i++ {
		m.Put(result(fmt.Sprintf("id-%d", i)))
	}
	assert.Equal(t, 100, m.Len())
}
