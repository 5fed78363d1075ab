// Package security provides the security tab. It only summarizes what the
// registry already knows; key management happens elsewhere.
package security

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gateway-console/internal/app"
	"github.com/j-veylop/gateway-console/internal/ui/components"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

// Model represents the security tab.
type Model struct {
	state  *app.State
	width  int
	height int
}

// New creates a new security model.
func New(state *app.State) *Model {
	return &Model{state: state}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd { return nil }

// Update handles messages. The tab has no interactions.
func (m *Model) Update(tea.Msg) (app.Tab, tea.Cmd) { return m, nil }

// View renders the security tab.
func (m *Model) View() string {
	total, active := m.state.Store().Projects.Count()
	cardWidth := components.CardWidth(m.width, 40, 80)

	icon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		styles.CardTitleStyle.Render("Access Control"),
		fmt.Sprintf("%s %s", icon, styles.HelpStyle.Render("Key rotation and audit trails are not available yet.")),
		"",
		components.RenderKeyValue("Issued keys", fmt.Sprintf("%d", total), 14),
		components.RenderKeyValue("Enabled keys", fmt.Sprintf("%d", active), 14),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Security"),
		styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
	)

	return styles.DocStyle.Width(m.width).Height(m.height).Render(content)
}

// SetSize sets the available size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns no bindings.
func (m *Model) ShortHelp() []key.Binding { return nil }

// FullHelp returns no bindings.
func (m *Model) FullHelp() [][]key.Binding { return nil }
