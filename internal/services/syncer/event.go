package syncer

import (
	"time"

	"github.com/j-veylop/gateway-console/internal/models"
)

// EventType identifies a scheduler lifecycle event.
type EventType int

const (
	// EventStarted fires when a cycle begins.
	EventStarted EventType = iota
	// EventSkipped fires when Start is dropped because a cycle is running.
	EventSkipped
	// EventQueued fires when a Resync is queued behind a running cycle.
	EventQueued
	// EventCompleted fires when a cycle's fetches have returned.
	EventCompleted
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventSkipped:
		return "skipped"
	case EventQueued:
		return "queued"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Outcome summarizes a completed cycle.
type Outcome int

const (
	// OutcomeOK means both views were refreshed.
	OutcomeOK Outcome = iota
	// OutcomePartial means exactly one fetch failed.
	OutcomePartial
	// OutcomeFailed means both fetches failed.
	OutcomeFailed
	// OutcomeDiscarded means the scheduler closed while the cycle ran.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomePartial:
		return "partial"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

func outcomeOf(statsErr, projectsErr error) Outcome {
	switch {
	case statsErr == nil && projectsErr == nil:
		return OutcomeOK
	case statsErr != nil && projectsErr != nil:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

// Event reports a scheduler state change.
type Event struct {
	Type  EventType
	Cycle uint64
	At    time.Time

	// Set on EventCompleted only.
	Outcome             Outcome
	Duration            time.Duration
	StatsErr            error
	ProjectsErr         error
	ConsecutiveFailures int
	// Stats is the snapshot this cycle applied, nil when the fetch failed or
	// the cycle was discarded.
	Stats *models.Stats
}
