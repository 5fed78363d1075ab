package projects

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/ui/components"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

const detailLabelWidth = 14

// View renders the projects tab.
func (m *Model) View() string {
	registry := m.state.Store().Projects
	if !registry.Loaded() && m.state.IsSyncing() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderTitle()}

	if m.state.Store().View.FormOpen() {
		sections = append(sections, m.renderForm())
	} else {
		sections = append(sections, m.renderTable())
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Project Management")

	total, active := m.state.Store().Projects.Count()
	text := fmt.Sprintf("%d projects registered · %d active", total, active)
	if at := m.state.Store().Projects.UpdatedAt(); !at.IsZero() {
		text += " · updated " + humanize.Time(at)
	}
	subtitle := styles.HelpStyle.Render(text)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTable() string {
	m.refreshRows()

	if len(m.table.Rows()) == 0 {
		return m.renderEmptyState()
	}

	cardWidth := max(m.width-6, 60)
	parts := []string{styles.CardStyle.Width(cardWidth).Render(m.table.View())}

	if detail := m.renderDetail(cardWidth); detail != "" {
		parts = append(parts, detail)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderEmptyState() string {
	cardWidth := max(m.width-6, 40)

	hint := "Press 'n' to create a project"
	if problem := m.state.Sync().Problem; problem != "" && !m.state.Store().Projects.Loaded() {
		hint = problem
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Projects Yet"),
		"",
		styles.HelpStyle.Render("Projects own the API keys that clients use to reach the gateway."),
		"",
		styles.InfoTextStyle.Render(hint),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderDetail shows the fields of the selected project that do not fit the table.
func (m *Model) renderDetail(width int) string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	p, ok := m.state.Store().Projects.Get(row[colID])
	if !ok {
		return ""
	}

	pending := m.state.Store().Projects.IsPending(p.ID)
	status := p.Status()
	if pending {
		status = "PENDING"
	}

	description := "-"
	if p.Description != nil && *p.Description != "" {
		description = *p.Description
	}

	rateLimit := "unlimited"
	if p.RateLimitPerMinute != nil {
		rateLimit = fmt.Sprintf("%d / min", *p.RateLimitPerMinute)
	}

	rows := []string{
		styles.CardTitleStyle.Render(p.Name),
		components.RenderKeyValue("Status", styles.GetStatusStyle(p.IsActive, pending).Render(status), detailLabelWidth),
		components.RenderKeyValue("Description", description, detailLabelWidth),
		components.RenderKeyValue("API key", p.MaskedKey(), detailLabelWidth),
		components.RenderKeyValue("Rate limit", rateLimit, detailLabelWidth),
		components.RenderKeyValue("Models", allowedModels(p), detailLabelWidth),
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func allowedModels(p models.Project) string {
	if len(p.AllowedModels) == 0 {
		return "none"
	}
	return strings.Join(p.AllowedModels, ", ")
}

// renderForm renders the new project form.
func (m *Model) renderForm() string {
	cardWidth := min(max(m.width-10, 50), 80)
	form := m.state.Store().View.Form()

	rows := []string{styles.CardTitleStyle.Render("New Project"), ""}

	labels := [3]string{"Name:", "Description:", "Allowed models (comma separated):"}
	for i, label := range labels {
		focused := int(m.focusedField) == i

		if focused {
			rows = append(rows, styles.FocusedStyle.Render("> "+label))
		} else {
			rows = append(rows, styles.BlurredStyle.Render("  "+label))
		}

		inputStyle := styles.BlurredBorderStyle
		if focused {
			inputStyle = styles.FocusedBorderStyle
		}
		rows = append(rows, inputStyle.Width(cardWidth-10).Render(m.inputs[i].View()), "")
	}

	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}

	submitLabel := " Create Project "
	if form.Submitting {
		submitLabel = " Creating... "
	}

	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center,
			submitStyle.Render(submitLabel),
			"  ",
			cancelStyle.Render(" Cancel "),
		),
		"",
		styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: cancel"),
	)

	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderFooter() string {
	var shortcuts []string
	if m.state.Store().View.FormOpen() {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("t") + " toggle",
			styles.HelpKeyStyle.Render("n") + " new",
			styles.HelpKeyStyle.Render("r") + " refresh",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
