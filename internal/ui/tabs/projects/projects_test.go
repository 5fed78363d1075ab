package projects

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gateway-console/internal/app"
	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/state"
)

func newTestModel(t *testing.T) (*Model, *state.Store) {
	t.Helper()

	desc := "primary tenant"
	limit := 60
	store := state.NewStore("llama3")
	store.Projects.ReplaceAll([]models.Project{
		{
			ID:                 "p1",
			Name:               "alpha",
			Description:        &desc,
			APIKey:             "sk-alpha-0123456789abcdef",
			AllowedModels:      []string{"llama3", "mistral"},
			IsActive:           true,
			RateLimitPerMinute: &limit,
		},
		{ID: "p2", Name: "beta", APIKey: "sk-beta"},
	}, time.Now())

	m := New(app.NewState(store))
	m.SetSize(140, 50)
	return m, store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

func TestNew(t *testing.T) {
	if m := New(app.NewState(nil)); m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	for _, want := range []string{"Project Management", "updated now", "alpha", "beta", "ACTIVE", "INACTIVE", "sk-alpha-0123456...", "primary tenant", "60 / min"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
	if strings.Contains(view, "sk-alpha-0123456789abcdef") {
		t.Error("view must not show the full API key")
	}
}

func TestModel_ViewStates(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(*app.State)
		contains string
	}{
		{"loading", func(s *app.State) { s.SetSyncing(true) }, "Loading projects..."},
		{"empty", func(*app.State) {}, "No Projects Yet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := app.NewState(nil)
			tt.prepare(st)
			m := New(st)
			m.SetSize(100, 30)

			if view := m.View(); !strings.Contains(view, tt.contains) {
				t.Errorf("view should contain %q", tt.contains)
			}
		})
	}
}

func TestModel_PendingStatus(t *testing.T) {
	m, store := newTestModel(t)
	store.Projects.MarkPending("p1")

	if !strings.Contains(m.View(), "PENDING") {
		t.Error("a project with a toggle in flight should show PENDING")
	}
}

func TestModel_Toggle(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want app.ToggleProjectMsg
	}{
		{"t on first row", []tea.KeyMsg{runes("t")}, app.ToggleProjectMsg{ID: "p1", Name: "alpha"}},
		{"enter on second row", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyEnter}}, app.ToggleProjectMsg{ID: "p2", Name: "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)

			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = m.Update(k)
			}
			if cmd == nil {
				t.Fatal("expected a command")
			}
			got, ok := cmd().(app.ToggleProjectMsg)
			if !ok {
				t.Fatalf("unexpected message %T", cmd())
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestModel_ToggleWithoutProjects(t *testing.T) {
	m := New(app.NewState(nil))
	if _, cmd := m.Update(runes("t")); cmd != nil {
		t.Error("toggle without rows should do nothing")
	}
}

func TestModel_FormLifecycle(t *testing.T) {
	m, store := newTestModel(t)
	view := store.View

	m.Update(runes("n"))
	if !view.FormOpen() {
		t.Fatal("n should open the form")
	}
	if got := m.inputs[fieldModels].Value(); got != "llama3" {
		t.Errorf("models input = %q, want default", got)
	}
	if !strings.Contains(m.View(), "New Project") {
		t.Error("view should render the form")
	}

	typeText(m, "gamma")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "test")

	form := view.Form()
	if form.Name != "gamma" || form.Description != "test" {
		t.Errorf("draft = %+v", form)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should submit")
	}
	if _, ok := cmd().(app.SubmitProjectMsg); !ok {
		t.Errorf("unexpected message %T", cmd())
	}

	// what the coordinator does on success
	if _, err := view.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	typeText(m, "ignored")
	if view.Form().Description != "test" {
		t.Error("typing while submitting must not change the draft")
	}
	view.CompleteSubmit(true)
	m.Update(app.CreateResultMsg{})

	if view.FormOpen() {
		t.Error("form should close after a successful create")
	}
	if m.inputs[fieldName].Value() != "" || m.inputs[fieldModels].Value() != "llama3" {
		t.Error("inputs should reset to the defaults")
	}
}

func TestModel_FormCancel(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"escape", []tea.KeyMsg{{Type: tea.KeyEsc}}},
		{"cancel button", []tea.KeyMsg{
			{Type: tea.KeyShiftTab},
			{Type: tea.KeyEnter},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestModel(t)
			m.Update(runes("n"))
			typeText(m, "draft")

			for _, k := range tt.keys {
				if _, cmd := m.Update(k); cmd != nil {
					if _, ok := cmd().(app.SubmitProjectMsg); ok {
						t.Fatal("cancel must not submit")
					}
				}
			}

			if store.View.FormOpen() {
				t.Error("form should be closed")
			}
			if store.View.Form().Name != "draft" {
				t.Error("draft should be kept for the next open")
			}
		})
	}
}

func TestModel_Help(t *testing.T) {
	m, store := newTestModel(t)
	if len(m.ShortHelp()) != 2 {
		t.Errorf("table help = %d bindings", len(m.ShortHelp()))
	}
	store.View.OpenForm()
	if len(m.ShortHelp()) != 3 {
		t.Errorf("form help = %d bindings", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp returned empty")
	}
}
