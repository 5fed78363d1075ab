package overview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/ui/components"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

const (
	statCardCount = 4
	chartHeight   = 6
)

// View renders the overview tab.
func (m *Model) View() string {
	stats, loaded := m.state.Store().Stats.Get()
	if !loaded {
		if m.state.IsSyncing() {
			return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
		}
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderStatCards(stats),
		"",
		m.renderRanking(stats),
		m.renderTraffic(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Gateway Overview")
	text := "Live traffic across all projects"
	if at := m.state.Store().Stats.UpdatedAt(); !at.IsZero() {
		text += " · updated " + humanize.Time(at)
	}
	subtitle := styles.HelpStyle.Render(text)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderEmpty is shown when no stats snapshot has ever been received.
func (m *Model) renderEmpty() string {
	icon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	lines := []string{
		fmt.Sprintf("%s %s", icon, styles.HelpStyle.Render("No statistics received yet")),
	}
	if problem := m.state.Sync().Problem; problem != "" {
		lines = append(lines, "", styles.ErrorTextStyle.Render("  ╰─▶ "+problem))
	}

	card := styles.CardStyle.Width(components.CardWidth(m.width, 40, 80)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterBoth(card, m.width, m.height)
}

func (m *Model) renderStatCards(stats models.Stats) string {
	total, active := m.state.Store().Projects.Count()

	// border plus right margin
	cardWidth := max((m.width-6)/statCardCount-3, 16)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		components.RenderStatCard("Total Requests", humanize.Comma(stats.TotalRequests), "all projects", cardWidth),
		components.RenderStatCard("Avg Latency", humanize.Ftoa(stats.AvgLatencyMs)+"ms", "per request", cardWidth),
		components.RenderStatCard("Most Active Model", stats.MostActiveModel(), "by request count", cardWidth),
		components.RenderStatCard("Active Projects", fmt.Sprintf("%d / %d", active, total), "enabled / total", cardWidth),
	)
}

// renderRanking renders one bar per model, scaled against the top model.
func (m *Model) renderRanking(stats models.Stats) string {
	cardWidth := components.CardWidth(m.width-2, 40, 120)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Model Ranking")),
		"",
	}

	if len(stats.TopModels) == 0 {
		rows = append(rows, "  "+styles.HelpStyle.Render("No model traffic recorded"))
	}
	for i, usage := range stats.TopModels {
		rows = append(rows, m.shareBar.View(usage.Name, usage.Count, stats.Share(i), cardWidth-6))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTraffic() string {
	cardWidth := components.CardWidth(m.width-2, 40, 120)
	chartWidth := max(cardWidth-16, 20)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Traffic")),
		"",
		components.RenderLineChart(m.state.Traffic(), chartWidth, chartHeight, "requests per sync"),
		"",
		m.renderLatencyLine(chartWidth),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderLatencyLine(width int) string {
	latency := m.state.Latency()
	label := styles.ProgressLabelStyle.Render("Latency ")
	if len(latency) == 0 {
		return label + styles.HelpStyle.Render("no samples")
	}

	spark := lipgloss.NewStyle().Foreground(styles.Secondary).Render(components.RenderSparkline(latency, width))
	last := humanize.Ftoa(latency[len(latency)-1]) + "ms"
	return strings.Join([]string{label, spark, " ", styles.HelpStyle.Render(last)}, "")
}
