package app

import (
	"time"

	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/services"
	"github.com/j-veylop/gateway-console/internal/state"
)

// TickMsg is sent periodically to expire notifications and age the status line.
type TickMsg struct {
	Time time.Time
}

// RefreshMsg requests an immediate sync cycle.
type RefreshMsg struct{}

// RefreshResultMsg reports whether a requested cycle was started.
type RefreshResultMsg struct {
	Started bool
}

// HistoryLoadedMsg carries the journal reads made after a completed cycle.
type HistoryLoadedMsg struct {
	Traffic   []float64
	Latency   []float64
	Health    *models.SyncHealth
	Syncs     []models.SyncRecord
	Mutations []models.MutationRecord
	Error     error
}

// ToggleProjectMsg asks for a project's activation to be flipped.
type ToggleProjectMsg struct {
	ID   string
	Name string
}

// ToggleResultMsg is returned once a toggle and its re-sync finished.
type ToggleResultMsg struct {
	ID    string
	Name  string
	Error error
}

// SubmitProjectMsg asks for the creation form to be submitted.
type SubmitProjectMsg struct{}

// CreateResultMsg is returned once a create and its re-sync finished.
type CreateResultMsg struct {
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// TabSwitchMsg requests switching to a specific section.
type TabSwitchMsg struct {
	Section state.Section
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
