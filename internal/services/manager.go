// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"k8s.io/utils/clock"

	"github.com/j-veylop/gateway-console/internal/config"
	"github.com/j-veylop/gateway-console/internal/db"
	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/metrics"
	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/services/gateway"
	"github.com/j-veylop/gateway-console/internal/services/mutation"
	"github.com/j-veylop/gateway-console/internal/services/syncer"
	"github.com/j-veylop/gateway-console/internal/state"
	"github.com/j-veylop/gateway-console/internal/version"
)

type (
	// SyncStartedEvent is emitted when a sync cycle begins.
	SyncStartedEvent struct {
		Cycle uint64
	}

	// SyncCompletedEvent is emitted after a cycle's results were applied.
	SyncCompletedEvent struct {
		Cycle               uint64
		At                  time.Time
		Outcome             syncer.Outcome
		StatsErr            error
		ProjectsErr         error
		ConsecutiveFailures int
	}

	// MutationEvent carries the result of a toggle or create.
	MutationEvent struct {
		mutation.Event
	}

	// AlertEvent is emitted when the data goes stale or recovers.
	AlertEvent struct {
		Recovered bool
		Title     string
		Message   string
	}

	// ErrorEvent is emitted when the session journal cannot be written.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SyncStartedEvent) isServiceEvent()   {}
func (SyncCompletedEvent) isServiceEvent() {}
func (MutationEvent) isServiceEvent()      {}
func (AlertEvent) isServiceEvent()         {}
func (ErrorEvent) isServiceEvent()         {}

// Notifier shows a desktop notification.
type Notifier func(title, message string) error

// Option customizes a Manager.
type Option func(*options)

type options struct {
	clock      clock.WithTicker
	httpClient *http.Client
	notify     Notifier
	registry   *prometheus.Registry
}

// WithClock replaces the wall clock driving the sync ticker.
func WithClock(c clock.WithTicker) Option {
	return func(o *options) { o.clock = c }
}

// WithHTTPClient replaces the admin API HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notify = n }
}

// WithRegistry collects metrics into reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	store       *state.Store
	client      *gateway.Client
	scheduler   *syncer.Scheduler
	coordinator *mutation.Coordinator
	database    *db.DB
	metrics     *metrics.Metrics
	metricsSrv  *metrics.Server
	notify      Notifier
	stale       bool
	stopChan    chan struct{}
	routerDone  chan struct{}
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once
}

// NewManager creates a new service manager. Syncing begins with Start.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	o := options{
		clock: clock.RealClock{},
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Manager{
		cfg:        cfg,
		store:      state.NewStore(cfg.DefaultModels),
		metrics:    metrics.New(reg),
		notify:     o.notify,
		stopChan:   make(chan struct{}),
		routerDone: make(chan struct{}),
	}

	var err error
	m.database, err = db.New(db.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session journal: %w", err)
	}

	m.client = gateway.NewClient(gateway.Config{
		BaseURL:   cfg.AdminURL,
		AdminKey:  cfg.AdminKey,
		Timeout:   cfg.RequestTimeout,
		UserAgent: "gateway-console/" + version.Short(),
	}, o.httpClient, m.metrics)
	logger.Info("admin API client configured", "url", m.client.BaseURL(), "timeout", cfg.RequestTimeout)

	m.scheduler = syncer.New(m.client, m.store.Stats, m.store.Projects, syncer.Config{
		Interval:       cfg.RefreshInterval,
		RequestTimeout: cfg.RequestTimeout,
		Clock:          o.clock,
		Metrics:        m.metrics,
	})

	m.coordinator = mutation.New(m.client, m.scheduler, m.store.Projects, mutation.Config{
		SurfaceToggleFailures: cfg.SurfaceToggleFailures,
		Metrics:               m.metrics,
	})

	if cfg.MetricsAddr != "" {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m.metricsSrv = m.metrics.Serve(cfg.MetricsAddr)
	}

	go m.routeEvents()

	return m, nil
}

// Start begins periodic syncing with an immediate first cycle.
func (m *Manager) Start() {
	m.scheduler.Run()
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer close(m.routerDone)
	for {
		select {
		case event := <-m.scheduler.Events():
			m.handleSyncEvent(event)

		case event := <-m.coordinator.Events():
			m.handleMutationEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSyncEvent(event syncer.Event) {
	switch event.Type {
	case syncer.EventStarted:
		m.broadcast(SyncStartedEvent{Cycle: event.Cycle})

	case syncer.EventCompleted:
		if event.Outcome == syncer.OutcomeDiscarded {
			return
		}
		m.journalCycle(event)

		m.broadcast(SyncCompletedEvent{
			Cycle:               event.Cycle,
			At:                  event.At,
			Outcome:             event.Outcome,
			StatsErr:            event.StatsErr,
			ProjectsErr:         event.ProjectsErr,
			ConsecutiveFailures: event.ConsecutiveFailures,
		})
		m.checkStaleness(event)
	}
}

func (m *Manager) journalCycle(event syncer.Event) {
	rec := &models.SyncRecord{
		Cycle:      event.Cycle,
		StartedAt:  event.At.Add(-event.Duration),
		DurationMs: event.Duration.Milliseconds(),
		Outcome:    event.Outcome.String(),
	}
	if event.StatsErr != nil {
		rec.StatsError = event.StatsErr.Error()
	}
	if event.ProjectsErr != nil {
		rec.ProjectsError = event.ProjectsErr.Error()
	}
	if err := m.database.InsertSyncRecord(rec); err != nil {
		logger.Error("failed to journal sync cycle", "cycle", event.Cycle, "error", err)
		m.broadcast(ErrorEvent{Service: "journal", Error: fmt.Errorf("sync cycle %d: %w", event.Cycle, err)})
	}

	// the cycle's own snapshot; the store may already hold a newer one
	if event.Stats == nil {
		return
	}
	stats := event.Stats
	sample := &models.StatsSample{
		Timestamp:     event.At,
		TotalRequests: stats.TotalRequests,
		AvgLatencyMs:  stats.AvgLatencyMs,
		TopModel:      stats.MostActiveModel(),
	}
	if err := m.database.InsertStatsSample(sample); err != nil {
		logger.Error("failed to journal stats sample", "error", err)
		m.broadcast(ErrorEvent{Service: "journal", Error: fmt.Errorf("stats sample: %w", err)})
		return
	}
	if _, err := m.database.PruneStatsSamples(m.cfg.HistoryLimit); err != nil {
		logger.Error("failed to prune stats samples", "error", err)
	}
}

// checkStaleness raises an alert once StaleAfter cycles in a row failed and
// another one when a cycle succeeds again.
func (m *Manager) checkStaleness(event syncer.Event) {
	m.mu.Lock()
	var alert *AlertEvent
	switch {
	case !m.stale && event.ConsecutiveFailures >= m.cfg.StaleAfter:
		m.stale = true
		alert = &AlertEvent{
			Title:   "Gateway data is stale",
			Message: fmt.Sprintf("%d sync cycles in a row failed; showing last known values", event.ConsecutiveFailures),
		}
	case m.stale && event.Outcome == syncer.OutcomeOK:
		m.stale = false
		alert = &AlertEvent{
			Recovered: true,
			Title:     "Gateway sync recovered",
			Message:   "Live data is flowing again",
		}
	}
	m.mu.Unlock()

	if alert == nil {
		return
	}

	logger.Warn(alert.Title, "consecutive_failures", event.ConsecutiveFailures)
	if m.cfg.DesktopAlerts && m.notify != nil {
		if err := m.notify(alert.Title, alert.Message); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
	m.broadcast(*alert)
}

func (m *Manager) handleMutationEvent(event mutation.Event) {
	rec := &models.MutationRecord{
		Timestamp: event.At,
		Op:        string(event.Op),
		Target:    event.ProjectID,
		OK:        !event.Failed(),
	}
	if rec.Target == "" {
		rec.Target = event.Name
	}
	if event.Err != nil {
		rec.Error = event.Err.Error()
	}
	if err := m.database.InsertMutation(rec); err != nil {
		logger.Error("failed to journal mutation", "op", event.Op, "error", err)
		m.broadcast(ErrorEvent{Service: "journal", Error: fmt.Errorf("%s %s: %w", event.Op, rec.Target, err)})
	}

	m.broadcast(MutationEvent{Event: event})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Store returns the views the console renders from.
func (m *Manager) Store() *state.Store {
	return m.store
}

// Loading reports whether a sync cycle is in flight.
func (m *Manager) Loading() bool {
	return m.scheduler.Loading()
}

// Refresh starts a sync cycle unless one is already running.
func (m *Manager) Refresh() bool {
	return m.scheduler.Start()
}

// ToggleProject flips a project's activation and waits for the re-sync.
func (m *Manager) ToggleProject(ctx context.Context, id string) error {
	return m.coordinator.Toggle(ctx, id)
}

// CreateProject submits the creation form and waits for the re-sync.
func (m *Manager) CreateProject(ctx context.Context) error {
	return m.coordinator.Create(ctx, m.store.View)
}

// SyncHealth summarizes the session's sync cycles.
func (m *Manager) SyncHealth() (*models.SyncHealth, error) {
	return m.database.GetSyncHealth()
}

// TrafficHistory returns requests per sync interval, oldest first.
func (m *Manager) TrafficHistory() ([]float64, error) {
	return m.database.GetRequestDeltas(m.cfg.HistoryLimit)
}

// LatencyHistory returns the average latency of each stats sample.
func (m *Manager) LatencyHistory() ([]float64, error) {
	samples, err := m.database.GetRecentStatsSamples(m.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.AvgLatencyMs
	}
	return out, nil
}

// RecentSyncs returns the latest journaled cycles.
func (m *Manager) RecentSyncs(limit int) ([]models.SyncRecord, error) {
	return m.database.GetRecentSyncRecords(limit)
}

// RecentMutations returns the latest journaled mutations.
func (m *Manager) RecentMutations(limit int) ([]models.MutationRecord, error) {
	return m.database.GetRecentMutations(limit)
}

// Stale reports whether the stale alert is currently raised.
func (m *Manager) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}

// Close stops syncing and releases every resource. Results of a cycle still
// in flight are discarded.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		m.scheduler.Close()
		close(m.stopChan)
		<-m.routerDone

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.metricsSrv != nil {
			if err := m.metricsSrv.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
