package settings

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gateway-console/internal/app"
	"github.com/j-veylop/gateway-console/internal/config"
	"github.com/j-veylop/gateway-console/internal/models"
)

func TestNew(t *testing.T) {
	m := New(app.NewState(nil), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(nil), nil)
	m.SetSize(80, 10)

	if updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown}); updated == nil {
		t.Error("Update returned nil model")
	}
	if _, cmd := m.Update(nil); cmd != nil {
		t.Error("non-key messages should be ignored")
	}
}

func TestModel_ViewConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AdminKey = "secret-admin-key"
	cfg.MetricsAddr = "127.0.0.1:9464"

	m := New(app.NewState(nil), cfg)
	m.SetSize(120, 100)

	view := m.View()
	for _, want := range []string{"Configuration", cfg.AdminURL, "secr********", "127.0.0.1:9464", "log only", "About"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
	if strings.Contains(view, "secret-admin-key") {
		t.Error("admin key must be masked")
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(nil), nil)
	m.SetSize(120, 100)

	view := m.View()
	for _, want := range []string{"Configuration not loaded", "No cycles recorded", "No changes made"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_ViewHistory(t *testing.T) {
	st := app.NewState(nil)
	st.SetHistory(nil, nil,
		&models.SyncHealth{Cycles: 4, OK: 3, Failed: 1, LastSuccess: time.Now()},
		[]models.SyncRecord{
			{Cycle: 4, StartedAt: time.Now(), DurationMs: 120, Outcome: "ok"},
			{Cycle: 3, StartedAt: time.Now(), DurationMs: 4000, Outcome: "failed", StatsError: "connection refused"},
		},
		[]models.MutationRecord{
			{Timestamp: time.Now(), Op: "toggle", Target: "p1", OK: true},
			{Timestamp: time.Now(), Op: "create", Target: "gamma", Error: "gateway returned status 500"},
		},
	)

	m := New(st, nil)
	m.SetSize(120, 100)

	view := m.View()
	for _, want := range []string{"Sync Health", "75%", "0 / 1", "never", "Recent Cycles", "#4", "120ms", "#3", "connection refused", "toggle", "p1", "gamma", "status 500"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(nil), nil)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help should list the scroll bindings")
	}
}
