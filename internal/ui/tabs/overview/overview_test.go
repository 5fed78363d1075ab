package overview

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gateway-console/internal/app"
	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/state"
	"github.com/j-veylop/gateway-console/internal/services/syncer"
)

func populatedState() *app.State {
	store := state.NewStore("")
	store.Stats.Replace(models.Stats{
		TotalRequests: 12345,
		AvgLatencyMs:  42,
		TopModels: []models.ModelUsage{
			{Name: "llama3", Count: 900},
			{Name: "mistral", Count: 300},
		},
	}, time.Now())
	store.Projects.ReplaceAll([]models.Project{
		{ID: "p1", Name: "alpha", IsActive: true},
		{ID: "p2", Name: "beta"},
		{ID: "p3", Name: "gamma", IsActive: true},
	}, time.Now())
	return app.NewState(store)
}

func TestNew(t *testing.T) {
	if m := New(app.NewState(nil)); m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(nil))
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(nil))

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if updated == nil {
		t.Error("Update returned nil model on scroll")
	}
}

func TestModel_View(t *testing.T) {
	m := New(populatedState())
	m.SetSize(140, 80)

	view := m.View()
	for _, want := range []string{
		"Gateway Overview",
		"Total Requests",
		"12,345",
		"42ms",
		"llama3",
		"mistral",
		"2 / 3",
		"updated now",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_ViewBeforeFirstSync(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(*app.State)
		contains string
	}{
		{
			name:     "syncing",
			prepare:  func(s *app.State) { s.SetSyncing(true) },
			contains: "Synchronizing data...",
		},
		{
			name:     "idle",
			prepare:  func(*app.State) {},
			contains: "No statistics received yet",
		},
		{
			name: "failed",
			prepare: func(s *app.State) {
				s.RecordSync(syncer.OutcomeFailed, time.Now(), "gateway unreachable", 1)
			},
			contains: "gateway unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := app.NewState(nil)
			tt.prepare(st)
			m := New(st)
			m.SetSize(100, 30)

			if view := m.View(); !strings.Contains(view, tt.contains) {
				t.Errorf("view should contain %q:\n%s", tt.contains, view)
			}
		})
	}
}

func TestModel_ViewWithoutModels(t *testing.T) {
	store := state.NewStore("")
	store.Stats.Replace(models.Stats{TotalRequests: 0}, time.Now())
	m := New(app.NewState(store))
	m.SetSize(140, 80)

	view := m.View()
	if !strings.Contains(view, "N/A") {
		t.Error("most active model should fall back to N/A")
	}
	if !strings.Contains(view, "No model traffic recorded") {
		t.Error("ranking should show the empty state")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(nil))
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp returned empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp returned empty")
	}
}
