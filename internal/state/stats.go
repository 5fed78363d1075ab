package state

import (
	"sync"
	"time"

	"github.com/j-veylop/gateway-console/internal/models"
)

// StatsView holds the latest stats snapshot. The snapshot is only ever
// replaced as a whole.
type StatsView struct {
	mu        sync.RWMutex
	snapshot  *models.Stats
	updatedAt time.Time
}

// NewStatsView returns a view with no snapshot.
func NewStatsView() *StatsView {
	return &StatsView{}
}

// Replace swaps in a new snapshot taken at the given time.
func (v *StatsView) Replace(stats models.Stats, at time.Time) {
	snapshot := stats.Clone()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = &snapshot
	v.updatedAt = at
}

// Get returns a copy of the snapshot and whether one has been received.
func (v *StatsView) Get() (models.Stats, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.snapshot == nil {
		return models.Stats{}, false
	}
	return v.snapshot.Clone(), true
}

// UpdatedAt returns when the snapshot was last replaced, zero if never.
func (v *StatsView) UpdatedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.updatedAt
}
