package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

const (
	shareLabelWidth = 18
	shareCountWidth = 10
)

// ShareBar renders one entry of the model ranking as a bar scaled against the
// top model's count.
type ShareBar struct {
	progress progress.Model
}

// NewShareBar creates a share bar with the console gradient.
func NewShareBar() ShareBar {
	return ShareBar{
		progress: progress.New(
			progress.WithScaledGradient("#7D56F4", "#FF5F87"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders a labelled bar. share is clamped to [0, 1].
func (b ShareBar) View(label string, count int64, share float64, width int) string {
	share = min(max(share, 0), 1)
	b.progress.Width = max(width-shareLabelWidth-shareCountWidth-2, 10)

	labelStr := styles.ProgressLabelStyle.Width(shareLabelWidth).Render(truncate(label, shareLabelWidth-1))
	countStr := styles.GetShareStyle(share).
		Width(shareCountWidth).
		Align(lipgloss.Right).
		Render(humanize.Comma(count))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, b.progress.ViewAs(share), " ", countStr)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return fmt.Sprintf("%s...", string(r[:n-3]))
}
