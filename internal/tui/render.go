package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sgendron/loadpulse/internal/format"
	"github.com/sgendron/loadpulse/internal/push"
	"github.com/sgendron/loadpulse/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Underline(true)
)

// render draws the full screen: tab bar, active tab content, status
// bar.
func (m Model) render() string {
	var content string
	switch m.tab {
	case TabQuick:
		content = m.renderQuickTab()
	case TabLoad:
		content = m.renderLoadTab()
	case TabHistory:
		content = m.renderHistoryTab()
	}

	contentBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(m.width - 2).
		Height(m.height - 3). // Tab bar + status bar
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabBar(),
		contentBox,
		m.renderStatusBar(),
	)
}

// renderTabBar draws the three tab labels, highlighting the active one.
func (m Model) renderTabBar() string {
	labels := []struct {
		tab  Tab
		text string
	}{
		{TabQuick, "1:Quick Test"},
		{TabLoad, "2:Load Test"},
		{TabHistory, "3:History"},
	}

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if label.tab == m.tab {
			parts = append(parts, styleActiveTab.Render(label.text))
		} else {
			parts = append(parts, styleSubtle.Render(label.text))
		}
	}
	return " " + strings.Join(parts, "  |  ")
}

// renderQuickTab draws the quick-test form and the latest probe result.
func (m Model) renderQuickTab() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Quick Test"))
	b.WriteString("\n\n")
	b.WriteString("URL: " + m.quickURL.View())
	b.WriteString("\n\n")

	switch {
	case m.quickLoading:
		b.WriteString(styleSubtle.Render("Testing..."))
	case m.quickErr != "":
		b.WriteString(styleError.Render("Test failed: " + m.quickErr))
	case m.quickResult != nil:
		b.WriteString(renderQuickResult(m.quickResult))
	default:
		b.WriteString(styleSubtle.Render("Press 'i' to edit the URL, Enter to run a single probe"))
	}

	return b.String()
}

// renderQuickResult formats one probe outcome.
func renderQuickResult(r *types.QuickTestResult) string {
	var b strings.Builder

	if r.Success {
		b.WriteString(styleSuccess.Render("✓ Success"))
	} else {
		b.WriteString(styleError.Render("✗ Failed"))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("URL:           %s\n", r.URL))
	if r.Status > 0 {
		b.WriteString(fmt.Sprintf("Status:        %s\n", renderStatusCode(r.Status)))
	}
	b.WriteString(fmt.Sprintf("Duration:      %dms\n", r.Duration))
	b.WriteString(fmt.Sprintf("Response size: %s\n", format.Bytes(r.ResponseSize)))
	if r.Error != "" {
		b.WriteString(fmt.Sprintf("Error:         %s\n", styleError.Render(r.Error)))
	}
	b.WriteString(fmt.Sprintf("Timestamp:     %s\n", format.Timestamp(r.Timestamp)))

	return b.String()
}

// renderStatusCode colors a single HTTP status: green below 400, red
// at or above.
func renderStatusCode(code int) string {
	text := fmt.Sprintf("%d", code)
	if code >= 400 {
		return styleError.Render(text)
	}
	return styleSuccess.Render(text)
}

// renderLoadTab draws the load-test form and either the pending
// placeholder or the completed run.
func (m Model) renderLoadTab() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Load Test"))
	b.WriteString("\n\n")

	urlLabel := "URL:         "
	reqLabel := "Requests:    "
	concLabel := "Concurrency: "
	if m.loadFocus == 0 {
		urlLabel = styleSelected.Render(urlLabel)
	} else if m.loadFocus == 1 {
		reqLabel = styleSelected.Render(reqLabel)
	} else {
		concLabel = styleSelected.Render(concLabel)
	}

	b.WriteString(urlLabel + m.loadURL.View() + "\n")
	b.WriteString(reqLabel + m.loadRequests.View() + "\n")
	b.WriteString(concLabel + m.loadConcurrency.View() + "\n\n")

	switch {
	case m.loadErr != "":
		b.WriteString(styleError.Render("Load test failed: " + m.loadErr))
	case m.pending != nil:
		b.WriteString(styleWarning.Render(fmt.Sprintf(
			"Load test running: %d requests, %d concurrent against %s",
			m.pending.requests, m.pending.concurrency, m.pending.url)))
		b.WriteString("\n")
		b.WriteString(styleSubtle.Render("Results will appear here when the run completes"))
	case m.loadResult != nil:
		b.WriteString(m.resultView.View())
	default:
		b.WriteString(styleSubtle.Render("Press 'i' to edit fields, Tab to move between them, Enter to start"))
	}

	return b.String()
}

// RenderLoadResult formats a completed run. Exported because the
// one-shot CLI renders the same block.
func RenderLoadResult(r *types.LoadTestResult) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Load Test Results"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("URL:             %s\n", r.URL))
	b.WriteString(fmt.Sprintf("Total requests:  %d\n", r.TotalRequests))
	b.WriteString(fmt.Sprintf("Concurrency:     %d\n", r.Concurrency))
	b.WriteString(fmt.Sprintf("Total duration:  %dms\n", r.Duration))
	b.WriteString("\n")

	rate := format.SuccessRate(r.SuccessCount, r.TotalRequests)
	rateLine := fmt.Sprintf("Success rate:    %s (%d ok, %d failed)", rate, r.SuccessCount, r.ErrorCount)
	if r.ErrorCount == 0 && r.SuccessCount > 0 {
		b.WriteString(styleSuccess.Render(rateLine))
	} else if r.ErrorCount > 0 {
		b.WriteString(styleWarning.Render(rateLine))
	} else {
		b.WriteString(rateLine)
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Avg response:    %s\n", format.Millis(r.AvgResponseTime)))
	b.WriteString(fmt.Sprintf("Min response:    %dms\n", r.MinResponseTime))
	b.WriteString(fmt.Sprintf("Max response:    %dms\n", r.MaxResponseTime))
	b.WriteString("\n")

	if len(r.StatusCodes) > 0 {
		b.WriteString("Status codes:\n")
		b.WriteString(renderStatusCodeBadges(r.StatusCodes))
	}

	b.WriteString(fmt.Sprintf("\nCompleted:       %s\n", format.Timestamp(r.Timestamp)))

	return b.String()
}

// renderStatusCodeBadges lists status-code counts in ascending code
// order, colored by class. Non-numeric keys (transport errors bucketed
// under a label) sort after the numeric ones and render red.
func renderStatusCodeBadges(codes map[string]int) string {
	keys := make([]string, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		badge := fmt.Sprintf("  %s: %d", key, codes[key])
		var code int
		if _, err := fmt.Sscanf(key, "%d", &code); err == nil && code < 400 {
			b.WriteString(styleSuccess.Render(badge))
		} else {
			b.WriteString(styleError.Render(badge))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderHistoryTab draws the recent-runs listing with its empty and
// error states.
func (m Model) renderHistoryTab() string {
	var b strings.Builder

	title := "History"
	if m.searchActive || m.searchQuery != "" {
		title = fmt.Sprintf("History (filter: %s)", m.searchQuery)
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.historyLoading:
		b.WriteString(styleSubtle.Render("Loading history..."))
	case m.historyErr != "":
		b.WriteString(styleError.Render("Failed to load history: " + m.historyErr))
		b.WriteString("\n")
		b.WriteString(styleSubtle.Render("Press 'r' to retry"))
	case len(m.historyEntries) == 0:
		b.WriteString(styleSubtle.Render("No load tests recorded yet.\n\nRun one from the Load Test tab."))
	case len(m.historyFiltered) == 0:
		b.WriteString(styleSubtle.Render("No entries match the filter."))
	default:
		b.WriteString(m.historyView.View())
	}

	return b.String()
}

// historyListContent builds the line-per-entry listing used by the
// history viewport.
func (m Model) historyListContent() string {
	var b strings.Builder

	for i, entry := range m.historyFiltered {
		rate := format.Rate1(entry.SuccessCount, entry.TotalRequests)
		line := fmt.Sprintf("%s  %-40s  %6d req  %s",
			format.Timestamp(entry.Timestamp), truncate(entry.URL, 40), entry.TotalRequests, rate)

		if i == m.historyIndex {
			b.WriteString(styleSelected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// renderStatusBar draws the bottom bar: connection indicator, messages,
// key hints.
func (m Model) renderStatusBar() string {
	var indicator string
	switch m.connState {
	case push.StateConnected:
		indicator = styleSuccess.Render("● connected")
	case push.StateReconnecting:
		indicator = styleWarning.Render("◐ reconnecting")
	default:
		indicator = styleSubtle.Render("○ connecting")
	}

	var message string
	switch {
	case m.errorMsg != "":
		message = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		message = m.statusMsg
	default:
		message = styleSubtle.Render("1/2/3: tabs | i: edit | Enter: run | u: recent URL | c: copy | q: quit")
	}

	return fmt.Sprintf(" %s  %s", indicator, message)
}

// updateResultView refreshes the load-result viewport content.
func (m *Model) updateResultView() {
	if m.loadResult != nil {
		m.resultView.SetContent(RenderLoadResult(m.loadResult))
		m.resultView.GotoTop()
	}
}

// updateHistoryView refreshes the history viewport content.
func (m *Model) updateHistoryView() {
	m.historyView.SetContent(m.historyListContent())
}

// resizeViewports fits the viewports to the current terminal size.
func (m *Model) resizeViewports() {
	width := m.width - 4
	height := m.height - ContentOffsetStandard
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}

	m.resultView.Width = width
	m.resultView.Height = height
	m.historyView.Width = width
	m.historyView.Height = height
}
