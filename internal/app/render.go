package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/gateway-console/internal/services/syncer"
	"github.com/j-veylop/gateway-console/internal/state"
	"github.com/j-veylop/gateway-console/internal/ui/styles"
)

// Styles defines the application chrome styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Content     lipgloss.Style
	StatusBar   lipgloss.Style
	Toast       lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
}

// DefaultStyles returns the chrome styles built on the console palette.
func DefaultStyles() Styles {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	rule := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle)

	return Styles{
		TabBar:      rule.BorderBottom(true),
		ActiveTab:   fg(styles.Primary).Bold(true).Padding(0, 2),
		InactiveTab: fg(styles.TextMuted).Padding(0, 2),
		Content:     lipgloss.NewStyle().Padding(1, 2),
		StatusBar:   rule.BorderTop(true),
		Toast:       styles.ToastStyle,

		Title:     fg(styles.Primary).Bold(true),
		Subtle:    fg(styles.TextMuted),
		Highlight: fg(styles.Secondary).Bold(true),
		Error:     fg(styles.Error).Bold(true),
		Success:   fg(styles.Success),
		Warning:   fg(styles.Warning),
		Info:      fg(styles.Info),
	}
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	idx := int(m.ActiveSection())
	if idx < len(m.tabs) && m.tabs[idx] != nil {
		b.WriteString(m.tabs[idx].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	screen := b.String()

	// overlays are placed against the full terminal height
	if m.showHelp || len(m.state.GetNotifications()) > 0 {
		screen = padLines(screen, m.height)
	}

	if m.showHelp {
		panel := m.renderHelp()
		x := (m.width - lipgloss.Width(panel)) / 2
		y := (m.height - lipgloss.Height(panel)) / 2
		screen = placeOverlay(screen, panel, x, y)
	}

	if toasts := m.renderNotifications(); toasts != "" {
		// right aligned, just under the navbar
		screen = placeOverlay(screen, toasts, m.width-lipgloss.Width(toasts)-2, 2)
	}

	return screen
}

// padLines appends empty lines until s is at least height lines tall.
func padLines(s string, height int) string {
	if missing := height - lipgloss.Height(s); missing > 0 {
		s += strings.Repeat("\n", missing)
	}
	return s
}

// placeOverlay draws overlay over base with its top-left corner at (x, y).
// Overlay lines that fall below base are dropped.
func placeOverlay(base, overlay string, x, y int) string {
	x, y = max(x, 0), max(y, 0)
	lines := strings.Split(base, "\n")
	width := lipgloss.Width(overlay)

	for i, row := range strings.Split(overlay, "\n") {
		n := y + i
		if n >= len(lines) {
			break
		}

		left := ansi.Truncate(lines[n], x, "")
		if pad := x - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(lines[n], x+width, "")

		lines[n] = left + row + right
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderNavbar() string {
	active := m.ActiveSection()
	items := make([]string, 0, len(state.Sections))

	for i, section := range state.Sections {
		if section == active {
			items = append(items, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, section)))
			continue
		}
		items = append(items, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, section)))
	}

	return m.styles.TabBar.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

// renderStatusLine renders the sync indicator at the bottom of the screen.
func (m *Model) renderStatusLine() string {
	st := m.state.Sync()

	var line string
	switch {
	case st.Syncing:
		line = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Highlight.Render("Synchronizing data..."))
	case st.Stale:
		line = m.styles.Warning.Render("Data may be stale")
		if !st.LastSync.IsZero() {
			line += m.styles.Subtle.Render(" · last synced " + humanize.Time(st.LastSync))
		}
	case st.LastSync.IsZero() && st.Outcome == syncer.OutcomeFailed:
		line = m.styles.Error.Render("Gateway unavailable")
	case st.LastSync.IsZero():
		line = m.styles.Subtle.Render("Waiting for first sync")
	default:
		line = m.styles.Success.Render("All systems operational") +
			m.styles.Subtle.Render(" · synced "+humanize.Time(st.LastSync))
	}

	if !st.Syncing && st.Problem != "" {
		line += "  " + m.styles.Warning.Render(st.Problem)
	}

	if m.width > 0 {
		return m.styles.StatusBar.Width(m.width).Render(line)
	}
	return m.styles.StatusBar.Render(line)
}

// renderNotifications stacks the active toasts, newest last. It returns ""
// when there is nothing to show.
func (m *Model) renderNotifications() string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return ""
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		style, prefix := m.styles.Info, "[INFO]"
		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.Success, "[OK]"
		case NotificationError:
			style, prefix = m.styles.Error, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.Warning, "[WARN]"
		case NotificationLoading:
			prefix = m.spinner.View()
		}

		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+n.Message)))
	}

	return lipgloss.JoinVertical(lipgloss.Right, toasts...)
}

// renderHelp lists the global bindings and the active tab's bindings.
func (m *Model) renderHelp() string {
	section := func(title string, bindings []key.Binding) []string {
		out := []string{m.styles.Highlight.Render(title)}
		for _, b := range bindings {
			h := b.Help()
			out = append(out, fmt.Sprintf("  %-14s %s", h.Key, h.Desc))
		}
		return append(out, "")
	}

	k := m.keymap
	lines := []string{m.styles.Title.Render("Keyboard Shortcuts"), ""}
	lines = append(lines, section("Navigation", []key.Binding{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.NextTab, k.PrevTab})...)
	lines = append(lines, section("Actions", []key.Binding{k.Refresh, k.Help, k.Quit})...)

	active := m.ActiveSection()
	if idx := int(active); idx < len(m.tabs) && m.tabs[idx] != nil {
		if bindings := m.tabs[idx].ShortHelp(); len(bindings) > 0 {
			lines = append(lines, section(active.String(), bindings)...)
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	return m.styles.Content.Render(m.ActiveSection().String() + "\n\n" + m.styles.Subtle.Render("Nothing to show here yet."))
}
