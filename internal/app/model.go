// Package app implements the main Bubble Tea application with section-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/services"
	"github.com/j-veylop/gateway-console/internal/services/gateway"
	"github.com/j-veylop/gateway-console/internal/services/mutation"
	"github.com/j-veylop/gateway-console/internal/state"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "projects")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "security")),
		Tab4:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "settings")),
		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next section")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev section")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Model is the main application model.
type Model struct {
	tabs []Tab

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. mgr may be nil, in which
// case nothing is ever fetched.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	var store *state.Store
	if mgr != nil {
		store = mgr.Store()
	}

	return &Model{
		tabs:     make([]Tab, len(state.Sections)),
		state:    NewState(store),
		services: mgr,
		commands: NewCommands(mgr),
		keymap:   DefaultKeyMap(),
		styles:   DefaultStyles(),
		spinner:  s,
	}
}

// SetTabs sets the tabs for the model, one per section in navigation order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// ActiveSection returns the selected section.
func (m *Model) ActiveSection() state.Section {
	return m.state.Store().View.Section()
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init subscribes to service events and starts the sync loop.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.commands.Tick(DefaultTickInterval),
	}

	if m.services != nil {
		// Subscribe before starting so the first cycle's events are seen.
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		m.state.SetSyncing(true)
		mgr := m.services
		cmds = append(cmds, func() tea.Msg {
			mgr.Start()
			return nil
		})
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		// a dropped completion event must not leave the spinner running
		if m.services != nil && m.state.IsSyncing() && !m.services.Loading() {
			m.state.SetSyncing(false)
		}
		cmds = append(cmds, m.commands.Tick(DefaultTickInterval))
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case RefreshMsg:
		cmds = append(cmds, m.commands.Refresh())
	case RefreshResultMsg:
		if !msg.Started {
			cmds = append(cmds, m.commands.NotifyInfo("Sync already in progress"))
		}
	case HistoryLoadedMsg:
		if msg.Error != nil {
			logger.Warn("failed to read session journal", "error", msg.Error)
		}
		m.state.SetHistory(msg.Traffic, msg.Latency, msg.Health, msg.Syncs, msg.Mutations)
	case ToggleProjectMsg:
		cmds = append(cmds, m.handleToggleRequest(msg))
	case ToggleResultMsg:
		cmds = append(cmds, m.handleToggleResult(msg))
	case SubmitProjectMsg:
		if m.services != nil {
			m.state.SetLoadingNotification("Creating project...")
			cmds = append(cmds, createCmd(m.services))
		}
	case CreateResultMsg:
		m.state.ClearLoadingNotification()
		cmds = append(cmds, m.handleCreateResult(msg))
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, m.commands.ClearNotification(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case TabSwitchMsg:
		m.setSection(msg.Section)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.SyncStartedEvent:
		m.state.SetSyncing(true)

	case services.SyncCompletedEvent:
		m.state.RecordSync(e.Outcome, e.At, syncProblem(e), e.ConsecutiveFailures)
		if m.services != nil {
			return loadHistoryCmd(m.services)
		}

	case services.MutationEvent:
		var cmds []tea.Cmd
		if m.services != nil {
			cmds = append(cmds, loadHistoryCmd(m.services))
		}
		if e.Surface {
			cmds = append(cmds, m.mutationNotice(e.Event))
		}
		return tea.Batch(cmds...)

	case services.AlertEvent:
		m.state.SetStale(!e.Recovered)
		if e.Recovered {
			return m.commands.NotifySuccess(e.Title)
		}
		return m.commands.NotifyWarning(fmt.Sprintf("%s: %s", e.Title, e.Message))

	case services.ErrorEvent:
		return m.commands.NotifyError(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func syncProblem(e services.SyncCompletedEvent) string {
	var parts []string
	if e.StatsErr != nil {
		parts = append(parts, "stats: "+gateway.Describe(e.StatsErr))
	}
	if e.ProjectsErr != nil {
		parts = append(parts, "projects: "+gateway.Describe(e.ProjectsErr))
	}
	return strings.Join(parts, "; ")
}

func (m *Model) mutationNotice(ev mutation.Event) tea.Cmd {
	switch {
	case ev.Op == mutation.OpCreate && ev.Failed():
		return m.commands.NotifyError(fmt.Sprintf("Failed to create project %q: %s", ev.Name, gateway.Describe(ev.Err)))
	case ev.Op == mutation.OpCreate:
		return m.commands.NotifySuccess(fmt.Sprintf("Project %q created", ev.Name))
	case ev.Failed():
		return m.commands.NotifyError(fmt.Sprintf("Failed to toggle project %s: %s", m.projectLabel(ev.ProjectID), gateway.Describe(ev.Err)))
	default:
		p, ok := m.state.Store().Projects.Get(ev.ProjectID)
		if !ok {
			return m.commands.NotifySuccess(fmt.Sprintf("Project %s toggled", ev.ProjectID))
		}
		return m.commands.NotifySuccess(fmt.Sprintf("Project %s is now %s", p.Name, p.Status()))
	}
}

func (m *Model) projectLabel(id string) string {
	if p, ok := m.state.Store().Projects.Get(id); ok && p.Name != "" {
		return p.Name
	}
	return id
}

func (m *Model) handleToggleRequest(msg ToggleProjectMsg) tea.Cmd {
	if m.services == nil || msg.ID == "" {
		return nil
	}
	return toggleCmd(m.services, msg.ID, msg.Name)
}

// handleToggleResult reports only local problems. Backend rejections arrive
// as mutation events and are surfaced there when configured.
func (m *Model) handleToggleResult(msg ToggleResultMsg) tea.Cmd {
	switch {
	case msg.Error == nil:
		return nil
	case errors.Is(msg.Error, mutation.ErrToggleInFlight):
		return m.commands.NotifyInfo(fmt.Sprintf("Toggle already in progress for %s", m.projectLabel(msg.ID)))
	}
	if _, ok := gateway.AsFailure(msg.Error); ok {
		return nil
	}
	return m.commands.NotifyWarning(fmt.Sprintf("Toggled %s but the refresh did not finish: %v", m.projectLabel(msg.ID), msg.Error))
}

func (m *Model) handleCreateResult(msg CreateResultMsg) tea.Cmd {
	switch {
	case msg.Error == nil:
		return nil
	case errors.Is(msg.Error, state.ErrNameRequired):
		return m.commands.NotifyWarning("Project name is required")
	case errors.Is(msg.Error, state.ErrSubmitInFlight):
		return m.commands.NotifyInfo("Project creation already in progress")
	}
	if _, ok := gateway.AsFailure(msg.Error); ok {
		return nil
	}
	return m.commands.NotifyWarning(fmt.Sprintf("Project created but the refresh did not finish: %v", msg.Error))
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	idx := int(m.ActiveSection())
	if idx < len(m.tabs) && m.tabs[idx] != nil {
		var cmd tea.Cmd
		m.tabs[idx], cmd = m.tabs[idx].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	// tab bar and status line
	contentHeight := max(m.height-6, 0)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// setSection only changes local view state; it never triggers a fetch.
func (m *Model) setSection(s state.Section) {
	m.state.Store().View.SetSection(s)
	m.updateTabSizes()
}

// inputCaptured reports whether key presses belong to the creation form.
func (m *Model) inputCaptured() bool {
	return m.state.Store().View.FormOpen()
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.inputCaptured() {
		if msg.Type == tea.KeyCtrlC {
			return tea.Quit
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false

	case key.Matches(msg, m.keymap.Tab1):
		m.setSection(state.SectionOverview)

	case key.Matches(msg, m.keymap.Tab2):
		m.setSection(state.SectionProjects)

	case key.Matches(msg, m.keymap.Tab3):
		m.setSection(state.SectionSecurity)

	case key.Matches(msg, m.keymap.Tab4):
		m.setSection(state.SectionSettings)

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.state.Store().View.CycleSection(1)
			m.updateTabSizes()
		}

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.state.Store().View.CycleSection(-1)
			m.updateTabSizes()
		}

	case key.Matches(msg, m.keymap.Refresh):
		return m.commands.Refresh()
	}

	return nil
}

