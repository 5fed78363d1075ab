// Package syncer keeps the stats view and the project registry in step with
// the admin API.
//
// A Scheduler is either idle or syncing. A sync cycle fetches stats and
// projects concurrently and, once both calls have returned, writes every
// successful result into its view. A failed fetch leaves its view untouched.
// Cycles never overlap: Start is dropped while one is running, Resync queues
// a single follow-up cycle instead.
package syncer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/metrics"
	"github.com/j-veylop/gateway-console/internal/models"
)

const (
	// DefaultInterval is the polling period when none is configured.
	DefaultInterval = 30 * time.Second
	// DefaultRequestTimeout bounds each fetch of a cycle.
	DefaultRequestTimeout = 10 * time.Second

	eventBuffer = 64
)

// Fetcher is the read side of the admin API.
type Fetcher interface {
	FetchStats(ctx context.Context) (models.Stats, error)
	FetchProjects(ctx context.Context) ([]models.Project, error)
}

// StatsSink receives each successfully fetched stats snapshot.
type StatsSink interface {
	Replace(stats models.Stats, at time.Time)
}

// ProjectSink receives each successfully fetched project list.
type ProjectSink interface {
	ReplaceAll(projects []models.Project, at time.Time)
}

// Config configures a Scheduler.
type Config struct {
	Interval       time.Duration
	RequestTimeout time.Duration
	// Clock drives the ticker and timestamps. Defaults to the wall clock.
	Clock   clock.WithTicker
	Metrics *metrics.Metrics
}

// Scheduler runs sync cycles on a ticker and on demand.
type Scheduler struct {
	fetcher  Fetcher
	stats    StatsSink
	projects ProjectSink
	clock    clock.WithTicker
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration

	done   chan struct{}
	events chan Event

	mu       sync.Mutex
	syncing  bool
	closed   bool
	queued   bool
	ticker   clock.Ticker
	cycle    uint64
	failures int
	// current is released when the running cycle completes, next when the
	// queued cycle does.
	current []chan struct{}
	next    []chan struct{}
}

// New returns an idle scheduler writing into stats and projects.
func New(fetcher Fetcher, stats StatsSink, projects ProjectSink, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	return &Scheduler{
		fetcher:  fetcher,
		stats:    stats,
		projects: projects,
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
		interval: cfg.Interval,
		timeout:  cfg.RequestTimeout,
		done:     make(chan struct{}),
		events:   make(chan Event, eventBuffer),
	}
}

// Events delivers lifecycle events. When the consumer falls behind the oldest
// events are dropped.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Interval returns the polling period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Loading reports whether a cycle is in flight.
func (s *Scheduler) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// Run starts the ticker and performs the first cycle right away. Calling it
// again, or after Close, does nothing.
func (s *Scheduler) Run() {
	s.mu.Lock()
	if s.closed || s.ticker != nil {
		s.mu.Unlock()
		return
	}
	ticker := s.clock.NewTicker(s.interval)
	s.ticker = ticker
	s.mu.Unlock()

	logger.Info("sync scheduler started", "interval", s.interval)
	s.Start()
	go s.loop(ticker)
}

func (s *Scheduler) loop(ticker clock.Ticker) {
	for {
		select {
		case <-ticker.C():
			s.Start()
		case <-s.done:
			return
		}
	}
}

// Start begins a cycle if none is running. It returns false when the request
// was dropped because a cycle is already in flight or the scheduler is closed.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if s.syncing {
		cycle := s.cycle
		s.mu.Unlock()

		if s.metrics != nil {
			s.metrics.SyncSkipped.Inc()
		}
		logger.Debug("sync already in flight, request dropped", "cycle", cycle)
		s.emit(Event{Type: EventSkipped, Cycle: cycle, At: s.clock.Now()})
		return false
	}
	cycle := s.beginLocked()
	s.mu.Unlock()

	s.launch(cycle)
	return true
}

// Resync requests a cycle that starts no earlier than now. If one is already
// running a single follow-up cycle is queued behind it; concurrent requests
// share it. The returned channel closes once the requested cycle has
// completed, or when the scheduler is closed.
func (s *Scheduler) Resync() <-chan struct{} {
	ch := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	if s.syncing {
		s.next = append(s.next, ch)
		first := !s.queued
		s.queued = true
		cycle := s.cycle
		s.mu.Unlock()

		if first {
			if s.metrics != nil {
				s.metrics.SyncQueued.Inc()
			}
			s.emit(Event{Type: EventQueued, Cycle: cycle, At: s.clock.Now()})
		}
		return ch
	}
	s.current = append(s.current, ch)
	cycle := s.beginLocked()
	s.mu.Unlock()

	s.launch(cycle)
	return ch
}

// Close stops the ticker. A cycle still in flight is left to finish within
// its request timeout and whatever it returns is discarded. Every outstanding
// Resync channel is released.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.ticker != nil {
		s.ticker.Stop()
	}
	waiters := append(s.current, s.next...)
	s.current, s.next = nil, nil
	s.queued = false
	s.mu.Unlock()

	close(s.done)
	release(waiters)
	logger.Info("sync scheduler stopped")
}

// beginLocked moves the scheduler into the syncing state. s.mu must be held.
func (s *Scheduler) beginLocked() uint64 {
	s.syncing = true
	s.cycle++
	if s.metrics != nil {
		s.metrics.SyncInFlight.Set(1)
	}
	return s.cycle
}

// idleLocked moves the scheduler back to idle. s.mu must be held.
func (s *Scheduler) idleLocked() {
	s.syncing = false
	if s.metrics != nil {
		s.metrics.SyncInFlight.Set(0)
	}
}

func (s *Scheduler) launch(cycle uint64) {
	s.emit(Event{Type: EventStarted, Cycle: cycle, At: s.clock.Now()})
	go s.run(cycle)
}

// run performs one cycle and hands over to a queued cycle if there is one.
func (s *Scheduler) run(cycle uint64) {
	start := s.clock.Now()
	stats, projects, statsErr, projectsErr := s.fetch()
	elapsed := s.clock.Since(start)
	now := s.clock.Now()

	s.mu.Lock()
	ev := Event{
		Type:        EventCompleted,
		Cycle:       cycle,
		At:          now,
		Duration:    elapsed,
		StatsErr:    statsErr,
		ProjectsErr: projectsErr,
	}

	if s.closed {
		ev.Outcome = OutcomeDiscarded
		s.idleLocked()
		s.mu.Unlock()

		s.finish(ev)
		return
	}

	if statsErr == nil {
		s.stats.Replace(stats, now)
		ev.Stats = &stats
	}
	if projectsErr == nil {
		s.projects.ReplaceAll(projects, now)
	}

	ev.Outcome = outcomeOf(statsErr, projectsErr)
	if ev.Outcome == OutcomeOK {
		s.failures = 0
	} else {
		s.failures++
	}
	ev.ConsecutiveFailures = s.failures

	waiters := s.current
	s.current = nil

	var nextCycle uint64
	if s.queued {
		s.queued = false
		s.current, s.next = s.next, nil
		nextCycle = s.beginLocked()
	} else {
		s.idleLocked()
	}
	s.mu.Unlock()

	s.finish(ev)
	release(waiters)

	if nextCycle != 0 {
		s.launch(nextCycle)
	}
}

func (s *Scheduler) fetch() (models.Stats, []models.Project, error, error) {
	// Close does not cancel a running cycle; only the timeout ends it early.
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var (
		stats       models.Stats
		projects    []models.Project
		statsErr    error
		projectsErr error
	)

	// Both fetches always run to completion; one failing must not cancel the
	// other, so neither goroutine reports its error to the group.
	var g errgroup.Group
	g.Go(func() error {
		stats, statsErr = s.fetcher.FetchStats(ctx)
		return nil
	})
	g.Go(func() error {
		projects, projectsErr = s.fetcher.FetchProjects(ctx)
		return nil
	})
	// only joins the two fetches, the error is always nil
	_ = g.Wait()

	return stats, projects, statsErr, projectsErr
}

func (s *Scheduler) finish(ev Event) {
	if s.metrics != nil {
		s.metrics.SyncCycles.WithLabelValues(ev.Outcome.String()).Inc()
		s.metrics.SyncDuration.Observe(ev.Duration.Seconds())
	}

	switch ev.Outcome {
	case OutcomeOK:
		logger.Debug("sync cycle completed", "cycle", ev.Cycle, "elapsed", ev.Duration)
	case OutcomeDiscarded:
		logger.Debug("sync cycle finished after close, results discarded", "cycle", ev.Cycle)
	default:
		logger.Warn("sync cycle incomplete, keeping previous data",
			"cycle", ev.Cycle,
			"outcome", ev.Outcome.String(),
			"stats_error", ev.StatsErr,
			"projects_error", ev.ProjectsErr,
			"consecutive_failures", ev.ConsecutiveFailures)
	}

	s.emit(ev)
}

// emit never blocks; a full buffer loses its oldest event.
func (s *Scheduler) emit(ev Event) {
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func release(waiters []chan struct{}) {
	for _, ch := range waiters {
		close(ch)
	}
}
