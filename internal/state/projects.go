package state

import (
	"sync"
	"time"

	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/models"
)

// ProjectRegistry holds the projects in backend order.
//
// is_active is never edited here. A toggle only marks the project as pending
// until the backend acknowledges it; the flag itself changes through the next
// ReplaceAll.
type ProjectRegistry struct {
	mu        sync.RWMutex
	projects  []models.Project
	pending   map[string]struct{}
	loaded    bool
	updatedAt time.Time
}

// NewProjectRegistry returns an empty registry.
func NewProjectRegistry() *ProjectRegistry {
	return &ProjectRegistry{
		projects: make([]models.Project, 0),
		pending:  make(map[string]struct{}),
	}
}

// ReplaceAll replaces the collection with a fresh list fetch. Later records
// that repeat an id already seen are dropped.
func (r *ProjectRegistry) ReplaceAll(projects []models.Project, at time.Time) {
	next := make([]models.Project, 0, len(projects))
	seen := make(map[string]struct{}, len(projects))
	for i := range projects {
		id := projects[i].ID
		if _, dup := seen[id]; dup {
			logger.Warn("dropping duplicate project from list", "id", id)
			continue
		}
		seen[id] = struct{}{}
		next = append(next, projects[i].Clone())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = next
	r.loaded = true
	r.updatedAt = at
}

// List returns a copy of the projects.
func (r *ProjectRegistry) List() []models.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Project, len(r.projects))
	for i := range r.projects {
		out[i] = r.projects[i].Clone()
	}
	return out
}

// Get returns the project with the given id.
func (r *ProjectRegistry) Get(id string) (models.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.projects {
		if r.projects[i].ID == id {
			return r.projects[i].Clone(), true
		}
	}
	return models.Project{}, false
}

// Count returns the number of projects and how many are active.
func (r *ProjectRegistry) Count() (total, active int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects), models.CountActive(r.projects)
}

// Loaded reports whether a list fetch has been applied yet.
func (r *ProjectRegistry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// UpdatedAt returns when the collection was last replaced.
func (r *ProjectRegistry) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

// MarkPending records an outstanding toggle for id. It returns false when one
// is already outstanding.
func (r *ProjectRegistry) MarkPending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[id]; ok {
		return false
	}
	r.pending[id] = struct{}{}
	return true
}

// Acknowledge clears the outstanding toggle for id, whatever its outcome.
func (r *ProjectRegistry) Acknowledge(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
}

// IsPending reports whether a toggle for id is outstanding.
func (r *ProjectRegistry) IsPending(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pending[id]
	return ok
}
