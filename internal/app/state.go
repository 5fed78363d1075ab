// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/services/syncer"
	"github.com/j-veylop/gateway-console/internal/state"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// SyncStatus is what the status line knows about the latest cycle.
type SyncStatus struct {
	Syncing     bool
	LastSync    time.Time
	Outcome     syncer.Outcome
	Problem     string
	Stale       bool
	Consecutive int
}

// State is the presentation state shared by the tabs. The synchronized views
// live in the store; State adds what only the screen needs.
type State struct {
	mu sync.RWMutex

	store *state.Store

	sync      SyncStatus
	traffic   []float64
	latency   []float64
	health    *models.SyncHealth
	syncs     []models.SyncRecord
	mutations []models.MutationRecord

	notifications []Notification
}

// NewState wraps store. A nil store gets an empty one.
func NewState(store *state.Store) *State {
	if store == nil {
		store = state.NewStore("")
	}
	return &State{
		store:         store,
		notifications: make([]Notification, 0),
	}
}

// Store returns the synchronized views.
func (s *State) Store() *state.Store {
	return s.store
}

// SetSyncing records whether a cycle is in flight.
func (s *State) SetSyncing(syncing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync.Syncing = syncing
}

// IsSyncing reports whether a cycle is in flight.
func (s *State) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sync.Syncing
}

// RecordSync stores the result of a completed cycle. problem is empty when
// both fetches succeeded.
func (s *State) RecordSync(outcome syncer.Outcome, at time.Time, problem string, consecutive int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sync.Syncing = false
	s.sync.Outcome = outcome
	s.sync.Problem = problem
	s.sync.Consecutive = consecutive
	if outcome != syncer.OutcomeFailed {
		s.sync.LastSync = at
	}
}

// SetStale raises or clears the stale marker.
func (s *State) SetStale(stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync.Stale = stale
}

// Sync returns a copy of the sync status.
func (s *State) Sync() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sync
}

// SetHistory replaces the journal-derived series and summaries.
func (s *State) SetHistory(traffic, latency []float64, health *models.SyncHealth, syncs []models.SyncRecord, mutations []models.MutationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traffic = traffic
	s.latency = latency
	s.health = health
	s.syncs = syncs
	s.mutations = mutations
}

// Traffic returns requests per sync interval, oldest first.
func (s *State) Traffic() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.traffic...)
}

// Latency returns the average latency of each sample, oldest first.
func (s *State) Latency() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.latency...)
}

// Health returns the session's sync health, or nil before the first cycle.
func (s *State) Health() *models.SyncHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.health == nil {
		return nil
	}
	h := *s.health
	return &h
}

// RecentSyncs returns the latest journaled cycles, newest first.
func (s *State) RecentSyncs() []models.SyncRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SyncRecord(nil), s.syncs...)
}

// Mutations returns the latest journaled mutations, newest first.
func (s *State) Mutations() []models.MutationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MutationRecord(nil), s.mutations...)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = activeNotifications(s.notifications)
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotifications(s.notifications)
}

func activeNotifications(all []Notification) []Notification {
	active := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
