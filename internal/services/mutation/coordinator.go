// Package mutation runs operator changes against the admin API and
// re-synchronizes afterwards so the views show what the backend stored.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/metrics"
	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/state"
)

// ErrToggleInFlight is returned when a project already has a toggle running.
var ErrToggleInFlight = errors.New("toggle already in progress for project")

const eventBuffer = 32

// Transport is the write side of the admin API.
type Transport interface {
	ToggleProject(ctx context.Context, id string) error
	CreateProject(ctx context.Context, name, description string, allowedModels []string) error
}

// Resyncer schedules a sync cycle that starts after the call.
type Resyncer interface {
	Resync() <-chan struct{}
}

// PendingTracker marks projects with an outstanding toggle.
type PendingTracker interface {
	MarkPending(id string) bool
	Acknowledge(id string)
}

// Op names a mutation.
type Op string

const (
	OpToggle Op = "toggle"
	OpCreate Op = "create"
)

// Event reports the result of a mutation.
type Event struct {
	ID        string
	Op        Op
	ProjectID string
	Name      string
	Err       error
	// Surface tells the presentation layer whether to show the event.
	Surface bool
	At      time.Time
}

// Failed reports whether the mutation was rejected.
func (e Event) Failed() bool {
	return e.Err != nil
}

// Config configures a Coordinator.
type Config struct {
	// SurfaceToggleFailures shows rejected toggles to the operator. They are
	// logged and emitted either way.
	SurfaceToggleFailures bool
	Metrics               *metrics.Metrics
}

// Coordinator executes toggle and create.
type Coordinator struct {
	transport Transport
	resync    Resyncer
	pending   PendingTracker
	cfg       Config
	events    chan Event
}

// New returns a coordinator.
func New(transport Transport, resync Resyncer, pending PendingTracker, cfg Config) *Coordinator {
	return &Coordinator{
		transport: transport,
		resync:    resync,
		pending:   pending,
		cfg:       cfg,
		events:    make(chan Event, eventBuffer),
	}
}

// Events delivers mutation results. The oldest are dropped when the consumer
// falls behind.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Toggle asks the backend to flip a project's activation and waits for the
// follow-up sync. The local is_active flag is never edited; the registry
// changes only through that sync.
func (c *Coordinator) Toggle(ctx context.Context, id string) error {
	if !c.pending.MarkPending(id) {
		return ErrToggleInFlight
	}
	defer c.pending.Acknowledge(id)

	if err := c.transport.ToggleProject(ctx, id); err != nil {
		logger.Warn("project toggle rejected", "id", id, "error", err)
		c.record(OpToggle, "error")
		c.emit(Event{Op: OpToggle, ProjectID: id, Err: err, Surface: c.cfg.SurfaceToggleFailures})
		return fmt.Errorf("toggle project %s: %w", id, err)
	}

	c.record(OpToggle, "ok")
	logger.Info("project toggled, resynchronizing", "id", id)

	// the backend accepted the change even if the wait runs out
	err := c.await(ctx)
	c.emit(Event{Op: OpToggle, ProjectID: id})
	return err
}

// Create submits the creation form held by view. On success the form resets
// and closes and the call waits for the follow-up sync; on failure the form
// stays open with the entered values.
func (c *Coordinator) Create(ctx context.Context, view *state.ViewState) error {
	form, err := view.BeginSubmit()
	if err != nil {
		return err
	}

	name := strings.TrimSpace(form.Name)
	description := strings.TrimSpace(form.Description)
	allowed := models.ParseAllowedModels(form.ModelsText)

	if err := c.transport.CreateProject(ctx, name, description, allowed); err != nil {
		view.CompleteSubmit(false)
		logger.Warn("project creation rejected", "name", name, "error", err)
		c.record(OpCreate, "error")
		c.emit(Event{Op: OpCreate, Name: name, Err: err, Surface: true})
		return fmt.Errorf("create project %q: %w", name, err)
	}

	view.CompleteSubmit(true)
	c.record(OpCreate, "ok")
	logger.Info("project created, resynchronizing", "name", name, "models", len(allowed))

	err = c.await(ctx)
	c.emit(Event{Op: OpCreate, Name: name, Surface: true})
	return err
}

func (c *Coordinator) await(ctx context.Context) error {
	select {
	case <-c.resync.Resync():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for resync: %w", ctx.Err())
	}
}

func (c *Coordinator) record(op Op, result string) {
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.Mutations.WithLabelValues(string(op), result).Inc()
	}
}

func (c *Coordinator) emit(ev Event) {
	ev.ID = uuid.NewString()
	ev.At = time.Now()
	for {
		select {
		case c.events <- ev:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}
