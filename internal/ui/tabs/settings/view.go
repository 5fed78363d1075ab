package settings

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/gateway-console/internal/models"
	"github.com/j-veylop/gateway-console/internal/ui/components"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
	"github.com/j-veylop/gateway-console/internal/version"
)

const labelWidth = 22

// View renders the settings tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderHealthCard(),
		m.renderSyncsCard(),
		m.renderMutationsCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Settings")
	subtitle := styles.HelpStyle.Render("Configuration, sync health and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return components.CardWidth(m.width-2, 50, 90)
}

func row(label, value string) string {
	return components.RenderKeyValue(label, value, labelWidth)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	if c := m.config; c != nil {
		rows = append(rows,
			row("Admin URL", c.AdminURL),
			row("Admin key", c.MaskedAdminKey()),
			row("Refresh interval", c.RefreshInterval.String()),
			row("Request timeout", c.RequestTimeout.String()),
			row("Stale after", fmt.Sprintf("%d failed cycles", c.StaleAfter)),
			row("Toggle failures", surfaceLabel(c.SurfaceToggleFailures)),
			row("Default models", orDash(c.DefaultModels)),
			row("Desktop alerts", strconv.FormatBool(c.DesktopAlerts)),
			row("Metrics", orDash(c.MetricsAddr)),
			row("Config file", orDash(c.ConfigFile)),
			row("Log file", orDash(c.LogPath)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func surfaceLabel(surface bool) string {
	if surface {
		return "notify"
	}
	return "log only"
}

func (m *Model) renderHealthCard() string {
	rows := []string{styles.CardTitleStyle.Render("Sync Health")}

	h := m.state.Health()
	if h == nil || h.Cycles == 0 {
		rows = append(rows, styles.HelpStyle.Render("No cycles recorded this session"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rate := h.SuccessRate()
	rateStyle := styles.SuccessTextStyle
	switch {
	case rate < 0.5:
		rateStyle = styles.ErrorTextStyle
	case rate < 0.9:
		rateStyle = styles.WarningTextStyle
	}

	rows = append(rows,
		row("Cycles", humanize.Comma(int64(h.Cycles))),
		row("Success rate", rateStyle.Render(fmt.Sprintf("%.0f%%", rate*100))),
		row("Partial / failed", fmt.Sprintf("%d / %d", h.Partial, h.Failed)),
		row("Average duration", h.AvgDuration.String()),
		row("Last success", sinceLabel(h.LastSuccess.IsZero(), humanize.Time(h.LastSuccess))),
		row("Last failure", sinceLabel(h.LastFailure.IsZero(), humanize.Time(h.LastFailure))),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func sinceLabel(zero bool, s string) string {
	if zero {
		return "never"
	}
	return s
}

func (m *Model) renderSyncsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Recent Cycles")}

	syncs := m.state.RecentSyncs()
	if len(syncs) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No cycles recorded this session"))
	}
	for _, rec := range syncs {
		rows = append(rows, syncLine(rec))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func syncLine(rec models.SyncRecord) string {
	style := styles.SuccessTextStyle
	switch rec.Outcome {
	case "partial":
		style = styles.WarningTextStyle
	case "failed":
		style = styles.ErrorTextStyle
	}

	d := time.Duration(rec.DurationMs) * time.Millisecond
	line := fmt.Sprintf("#%-4d %s %s %s", rec.Cycle, rec.StartedAt.Format("15:04:05"), style.Render(fmt.Sprintf("%-7s", rec.Outcome)), d)
	for _, e := range []string{rec.StatsError, rec.ProjectsError} {
		if e != "" {
			line += " " + styles.HelpStyle.Render(e)
		}
	}
	return line
}

func (m *Model) renderMutationsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Recent Changes")}

	mutations := m.state.Mutations()
	if len(mutations) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No changes made this session"))
	}
	for _, rec := range mutations {
		rows = append(rows, mutationLine(rec))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func mutationLine(rec models.MutationRecord) string {
	mark := styles.SuccessTextStyle.Render("✓")
	if !rec.OK {
		mark = styles.ErrorTextStyle.Render("✗")
	}

	line := fmt.Sprintf("%s %s %-6s %s", mark, rec.Timestamp.Format("15:04:05"), rec.Op, rec.Target)
	if rec.Error != "" {
		line += " " + styles.HelpStyle.Render(rec.Error)
	}
	return line
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About"),
		row("Version", version.Short()),
		row("Build", version.Info()),
		row("Go version", runtime.Version()),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
