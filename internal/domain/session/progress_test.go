package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryProgressStore struct {
	mu      sync.Mutex
	records map[string]*ProgressRecord
	saves   int
}

func newMemoryProgressStore() *memoryProgressStore {
	return &memoryProgressStore{records: make(map[string]*ProgressRecord)}
}

func (m *memoryProgressStore) Save(_ context.Context, token, funnelID string, rec *ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[token+"/"+ProgressKey(funnelID)] = rec
	m.saves++
	return nil
}

func (m *memoryProgressStore) Load(_ context.Context, token, funnelID string) (*ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[token+"/"+ProgressKey(funnelID)], nil
}

func (m *memoryProgressStore) Clear(_ context.Context, token, funnelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, token+"/"+ProgressKey(funnelID))
	return nil
}

func (m *memoryProgressStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func TestProgressKey(t *testing.T) {
	assert.Equal(t, "funnel_elektriker-projekt_partial", ProgressKey("elektriker-projekt"))
}

func TestDebouncedProgress_CoalescesRapidSaves(t *testing.T) {
	store := newMemoryProgressStore()
	deb := NewDebouncedProgress(store, 20*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &ProgressRecord{CurrentStep: i}
		require.NoError(t, deb.Save(ctx, "tok", "f1", rec))
	}

	// Nothing written yet while the timer is pending.
	assert.Equal(t, 0, store.saveCount())

	assert.Eventually(t, func() bool {
		return store.saveCount() == 1
	}, time.Second, 5*time.Millisecond)

	rec, err := store.Load(ctx, "tok", "f1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 4, rec.CurrentStep)
}

func TestDebouncedProgress_LoadPrefersPending(t *testing.T) {
	store := newMemoryProgressStore()
	deb := NewDebouncedProgress(store, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok", "f1", &ProgressRecord{CurrentStep: 1}))
	require.NoError(t, deb.Save(ctx, "tok", "f1", &ProgressRecord{CurrentStep: 3}))

	rec, err := deb.Load(ctx, "tok", "f1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.CurrentStep)
}

func TestDebouncedProgress_ClearDropsPendingWrite(t *testing.T) {
	store := newMemoryProgressStore()
	deb := NewDebouncedProgress(store, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, deb.Save(ctx, "tok", "f1", &ProgressRecord{CurrentStep: 2}))
	require.NoError(t, deb.Clear(ctx, "tok", "f1"))

	time.Sleep(50 * time.Millisecond)

	rec, err := store.Load(ctx, "tok", "f1")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 0, store.saveCount())
}

func TestDebouncedProgress_ZeroIntervalWritesThrough(t *testing.T) {
	store := newMemoryProgressStore()
	deb := NewDebouncedProgress(store, 0)
	ctx := context.Background()

	require.NoError(t, deb.Save(ctx, "tok", "f1", &ProgressRecord{CurrentStep: 1}))

	assert.Equal(t, 1, store.saveCount())
}
