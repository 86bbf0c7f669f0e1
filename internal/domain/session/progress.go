package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"funnelwerk/internal/domain/funnel"
)

// ProgressRecord is the recovery blob persisted after every answer change
// and dropped on successful submission.
type ProgressRecord struct {
	Answers     map[string]funnel.AnswerValue `json:"answers"`
	Scores      map[string]ScoreEntry         `json:"scoreEntries"`
	CurrentStep int                           `json:"currentStepIndex"`
}

// ProgressKey builds the storage key for a funnel's partial progress.
func ProgressKey(funnelID string) string {
	return fmt.Sprintf("funnel_%s_partial", funnelID)
}

// ProgressStore persists partial session progress. Load returns (nil, nil)
// on a miss; implementations must treat malformed rows as a miss too.
type ProgressStore interface {
	Save(ctx context.Context, token, funnelID string, rec *ProgressRecord) error
	Load(ctx context.Context, token, funnelID string) (*ProgressRecord, error)
	Clear(ctx context.Context, token, funnelID string) error
}

// DebouncedProgress wraps a ProgressStore and coalesces the write storm of
// rapid answer changes into one write per quiet interval. Clear flushes by
// cancelling the pending write before deleting.
type DebouncedProgress struct {
	store    ProgressStore
	interval time.Duration

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	timer *time.Timer
	rec   *ProgressRecord
}

// NewDebouncedProgress wraps store. A non-positive interval disables
// debouncing and writes through synchronously.
func NewDebouncedProgress(store ProgressStore, interval time.Duration) *DebouncedProgress {
	return &DebouncedProgress{
		store:    store,
		interval: interval,
		pending:  make(map[string]*pendingWrite),
	}
}

func (d *DebouncedProgress) key(token, funnelID string) string {
	return token + "/" + ProgressKey(funnelID)
}

// Save schedules a write of the latest record. Consecutive saves within the
// interval replace the pending record instead of queueing.
func (d *DebouncedProgress) Save(ctx context.Context, token, funnelID string, rec *ProgressRecord) error {
	if d.interval <= 0 {
		return d.store.Save(ctx, token, funnelID, rec)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	k := d.key(token, funnelID)
	if p, ok := d.pending[k]; ok {
		p.rec = rec
		p.timer.Reset(d.interval)
		return nil
	}

	p := &pendingWrite{rec: rec}
	p.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		rec := p.rec
		delete(d.pending, k)
		d.mu.Unlock()

		// Detached from the request; persistence is best-effort recovery
		// data, so the error is swallowed by the store's own logging.
		_ = d.store.Save(context.Background(), token, funnelID, rec)
	})
	d.pending[k] = p
	return nil
}

// Load passes through, preferring a pending unwritten record when present.
func (d *DebouncedProgress) Load(ctx context.Context, token, funnelID string) (*ProgressRecord, error) {
	d.mu.Lock()
	if p, ok := d.pending[d.key(token, funnelID)]; ok {
		rec := p.rec
		d.mu.Unlock()
		return rec, nil
	}
	d.mu.Unlock()

	return d.store.Load(ctx, token, funnelID)
}

// Clear drops any pending write and deletes the stored record.
func (d *DebouncedProgress) Clear(ctx context.Context, token, funnelID string) error {
	d.mu.Lock()
	k := d.key(token, funnelID)
	if p, ok := d.pending[k]; ok {
		p.timer.Stop()
		delete(d.pending, k)
	}
	d.mu.Unlock()

	return d.store.Clear(ctx, token, funnelID)
}
