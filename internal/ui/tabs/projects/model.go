// Package projects provides the project management tab.
package projects

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gateway-console/internal/app"
	"github.com/j-veylop/gateway-console/internal/ui/components"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

// formField represents which field is focused in the creation form.
type formField int

const (
	fieldName formField = iota
	fieldDescription
	fieldModels
	fieldSubmit
	fieldCancel
	fieldCount
)

const (
	colName = iota
	colID
	colKey
	colStatus
	colModels
)

type keyMap struct {
	Toggle key.Binding
	Add    key.Binding
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("t", "enter"),
			key.WithHelp("t/enter", "toggle active"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the projects tab state.
type Model struct {
	state        *app.State
	table        table.Model
	inputs       [3]textinput.Model
	focusedField formField
	spinner      components.LoadingSpinner
	keys         keyMap
	width        int
	height       int
}

// New creates a new projects model.
func New(state *app.State) *Model {
	name := textinput.New()
	name.Placeholder = "my-project"
	name.CharLimit = 100
	name.Width = 40

	description := textinput.New()
	description.Placeholder = "Optional description"
	description.CharLimit = 300
	description.Width = 40

	allowed := textinput.New()
	allowed.Placeholder = "llama3, mistral"
	allowed.CharLimit = 500
	allowed.Width = 40

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle.Padding(0, 1)
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		inputs:  [3]textinput.Model{name, description, allowed},
		spinner: components.NewSpinner("Loading projects..."),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the projects tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the projects tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	view := m.state.Store().View

	switch msg := msg.(type) {
	case app.CreateResultMsg:
		m.loadForm()
		return m, nil

	case tea.KeyMsg:
		if view.FormOpen() {
			return m.updateForm(msg)
		}
		return m.updateTable(msg)
	}

	var cmd tea.Cmd
	if view.FormOpen() {
		if idx, ok := m.focusedInput(); ok {
			m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		}
		return m, cmd
	}

	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) updateTable(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	m.refreshRows()

	switch {
	case key.Matches(msg, m.keys.Toggle):
		row := m.table.SelectedRow()
		if len(row) == 0 {
			return m, nil
		}
		id, name := row[colID], row[colName]
		return m, func() tea.Msg {
			return app.ToggleProjectMsg{ID: id, Name: name}
		}

	case key.Matches(msg, m.keys.Add):
		m.state.Store().View.OpenForm()
		m.loadForm()
		m.focusedField = fieldName
		m.updateFormFocus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateForm handles keys while the creation form is open.
func (m *Model) updateForm(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	view := m.state.Store().View

	switch {
	case key.Matches(msg, m.keys.Cancel):
		view.CloseForm()
		m.blurInputs()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.focusedField = (m.focusedField + 1) % fieldCount
		m.updateFormFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Prev):
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
		m.updateFormFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focusedField == fieldCancel {
			view.CloseForm()
			m.blurInputs()
			return m, nil
		}
		if view.Form().Submitting {
			return m, nil
		}
		m.storeForm()
		return m, func() tea.Msg { return app.SubmitProjectMsg{} }
	}

	if view.Form().Submitting {
		return m, nil
	}

	idx, ok := m.focusedInput()
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	m.storeForm()
	return m, cmd
}

func (m *Model) focusedInput() (int, bool) {
	if m.focusedField < fieldSubmit {
		return int(m.focusedField), true
	}
	return 0, false
}

// storeForm copies the inputs into the shared draft.
func (m *Model) storeForm() {
	m.state.Store().View.SetFormFields(
		m.inputs[fieldName].Value(),
		m.inputs[fieldDescription].Value(),
		m.inputs[fieldModels].Value(),
	)
}

// loadForm copies the shared draft into the inputs.
func (m *Model) loadForm() {
	form := m.state.Store().View.Form()
	m.inputs[fieldName].SetValue(form.Name)
	m.inputs[fieldDescription].SetValue(form.Description)
	m.inputs[fieldModels].SetValue(form.ModelsText)
}

func (m *Model) updateFormFocus() {
	m.blurInputs()
	if idx, ok := m.focusedInput(); ok {
		m.inputs[idx].Focus()
	}
}

func (m *Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// refreshRows rebuilds the table from the registry, keeping the cursor in range.
func (m *Model) refreshRows() {
	registry := m.state.Store().Projects
	projects := registry.List()
	rows := make([]table.Row, 0, len(projects))

	for _, p := range projects {
		status := p.Status()
		if registry.IsPending(p.ID) {
			status = "PENDING"
		}

		allowed := strings.Join(p.AllowedModels, ", ")
		if allowed == "" {
			allowed = "-"
		}

		rows = append(rows, table.Row{p.Name, p.ID, p.MaskedKey(), status, allowed})
	}

	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func columns(width int) []table.Column {
	modelsWidth := min(max(width-84, 12), 40)
	return []table.Column{
		{Title: "Name", Width: 20},
		{Title: "ID", Width: 24},
		{Title: "Key", Width: 20},
		{Title: "Status", Width: 10},
		{Title: "Models", Width: modelsWidth},
	}
}

// SetSize sets the available size for the projects tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-18, 3))
	m.table.SetColumns(columns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.state.Store().View.FormOpen() {
		return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Toggle, m.keys.Add}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Add},
		{m.keys.Next, m.keys.Prev, m.keys.Submit, m.keys.Cancel},
	}
}
