package models

import "time"

// SyncRecord is one completed sync cycle as kept in the session journal.
type SyncRecord struct {
	ID            int64
	Cycle         uint64
	StartedAt     time.Time
	DurationMs    int64
	Outcome       string
	StatsError    string
	ProjectsError string
}

// StatsSample is a point of the session's traffic history.
type StatsSample struct {
	ID            int64
	Timestamp     time.Time
	TotalRequests int64
	AvgLatencyMs  float64
	TopModel      string
}

// MutationRecord is a toggle or create attempt.
type MutationRecord struct {
	ID        int64
	Timestamp time.Time
	Op        string
	Target    string
	OK        bool
	Error     string
}

// SyncHealth summarizes the session's sync cycles.
type SyncHealth struct {
	Cycles      int
	OK          int
	Partial     int
	Failed      int
	LastSuccess time.Time
	LastFailure time.Time
	AvgDuration time.Duration
}

// SuccessRate returns the share of cycles that refreshed both views.
func (h SyncHealth) SuccessRate() float64 {
	if h.Cycles == 0 {
		return 0
	}
	return float64(h.OK) / float64(h.Cycles)
}
