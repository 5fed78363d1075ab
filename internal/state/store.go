// Package state holds the in-memory views the console renders: the stats
// snapshot, the project registry and the local view state.
package state

// Store groups the views owned by one console session.
type Store struct {
	Stats    *StatsView
	Projects *ProjectRegistry
	View     *ViewState
}

// NewStore returns empty views. defaultModels seeds the creation form.
func NewStore(defaultModels string) *Store {
	return &Store{
		Stats:    NewStatsView(),
		Projects: NewProjectRegistry(),
		View:     NewViewState(defaultModels),
	}
}
