package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

// RenderStatCard renders a headline number with its title and caption.
func RenderStatCard(title, value, caption string, width int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render(title),
		styles.StatValueStyle.Render(value),
		styles.HelpStyle.Render(caption),
	)
	return styles.StatCardStyle.Width(width).Render(body)
}

// RenderKeyValue renders a "label: value" row with an aligned label column.
func RenderKeyValue(label, value string, labelWidth int) string {
	labelStyle := lipgloss.NewStyle().
		Width(labelWidth).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// CardWidth clamps the card width derived from the tab width.
func CardWidth(tabWidth, minWidth, maxWidth int) int {
	return min(max(tabWidth-6, minWidth), maxWidth)
}
