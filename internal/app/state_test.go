package app

import (
	"testing"
	"time"

	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/services/syncer"
	"github.com/j-veylop/gateway-console/internal/state"
)

func TestNewState(t *testing.T) {
	s := NewState(nil)
	if s.Store() == nil {
		t.Fatal("NewState(nil) should create a store")
	}
	if s.IsSyncing() {
		t.Error("should not be syncing initially")
	}
	if !s.Sync().LastSync.IsZero() {
		t.Error("LastSync should be zero before the first sync")
	}
	if s.Health() != nil {
		t.Error("Health should be nil before the first sync")
	}

	store := state.NewStore("llama3")
	if NewState(store).Store() != store {
		t.Error("NewState should keep the given store")
	}
}

func TestState_RecordSync(t *testing.T) {
	tests := []struct {
		name        string
		outcome     syncer.Outcome
		wantApplied bool
	}{
		{"ok", syncer.OutcomeOK, true},
		{"partial", syncer.OutcomePartial, true},
		{"failed", syncer.OutcomeFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(nil)
			s.SetSyncing(true)

			at := time.Now().Add(-time.Minute)
			s.RecordSync(tt.outcome, at, "problem", 1)

			st := s.Sync()
			if st.Syncing {
				t.Error("RecordSync should clear the syncing flag")
			}
			if st.Outcome != tt.outcome {
				t.Errorf("Outcome = %s, want %s", st.Outcome, tt.outcome)
			}
			if st.Problem != "problem" || st.Consecutive != 1 {
				t.Errorf("unexpected status %+v", st)
			}
			if applied := st.LastSync.Equal(at); applied != tt.wantApplied {
				t.Errorf("LastSync updated = %v, want %v", applied, tt.wantApplied)
			}
		})
	}
}

func TestState_Stale(t *testing.T) {
	s := NewState(nil)
	s.SetStale(true)
	if !s.Sync().Stale {
		t.Error("expected stale")
	}
	s.SetStale(false)
	if s.Sync().Stale {
		t.Error("expected fresh")
	}
}

func TestState_History(t *testing.T) {
	s := NewState(nil)
	traffic := []float64{1, 2, 3}
	health := &models.SyncHealth{Cycles: 3, OK: 2, Failed: 1}
	muts := []models.MutationRecord{{Op: "toggle", Target: "p1", OK: true}}

	syncs := []models.SyncRecord{{Cycle: 3, Outcome: "ok"}, {Cycle: 2, Outcome: "failed"}}

	s.SetHistory(traffic, []float64{40}, health, syncs, muts)

	got := s.Traffic()
	got[0] = 99
	if s.Traffic()[0] != 1 {
		t.Error("Traffic should return a copy")
	}
	if len(s.Latency()) != 1 {
		t.Errorf("Latency len = %d, want 1", len(s.Latency()))
	}

	h := s.Health()
	h.Cycles = 100
	if s.Health().Cycles != 3 {
		t.Error("Health should return a copy")
	}
	if got := s.RecentSyncs(); len(got) != 2 || got[0].Cycle != 3 {
		t.Errorf("RecentSyncs = %+v, want cycles 3 and 2", got)
	}
	if len(s.Mutations()) != 1 {
		t.Errorf("Mutations len = %d, want 1", len(s.Mutations()))
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState(nil)

	id1 := s.AddNotification(NotificationInfo, "one", time.Minute)
	id2 := s.AddNotification(NotificationError, "two", 0)
	if id1 == id2 {
		t.Fatal("notification IDs must be unique")
	}

	if n := len(s.GetNotifications()); n != 2 {
		t.Fatalf("notifications = %d, want 2", n)
	}

	s.RemoveNotification(id1)
	notes := s.GetNotifications()
	if len(notes) != 1 || notes[0].ID != id2 {
		t.Errorf("unexpected notifications after remove: %+v", notes)
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState(nil)
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "msg", 0)
	}
	if n := len(s.GetNotifications()); n != maxNotifications {
		t.Errorf("notifications = %d, want %d", n, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState(nil)
	s.AddNotification(NotificationInfo, "expired", time.Nanosecond)
	s.AddNotification(NotificationInfo, "sticky", 0)

	time.Sleep(5 * time.Millisecond)
	s.ClearExpiredNotifications()

	notes := s.GetNotifications()
	if len(notes) != 1 || notes[0].Message != "sticky" {
		t.Errorf("unexpected notifications: %+v", notes)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState(nil)

	s.SetLoadingNotification("Creating project...")
	s.SetLoadingNotification("Still creating...")

	notes := s.GetNotifications()
	if len(notes) != 1 {
		t.Fatalf("loading notification should be unique, got %d", len(notes))
	}
	if notes[0].Type != NotificationLoading || notes[0].Message != "Still creating..." {
		t.Errorf("unexpected loading notification: %+v", notes[0])
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
