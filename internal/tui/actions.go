package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/sgendron/loadpulse/internal/types"
	"gopkg.in/yaml.v3"
)

// submitQuickTest fires a single diagnostic probe at the URL in the
// quick-test input. The rendered result comes straight back in the
// response body.
func (m *Model) submitQuickTest() tea.Cmd {
	targetURL := strings.TrimSpace(m.quickURL.Value())
	if targetURL == "" {
		return func() tea.Msg {
			return errorMsg("Enter a URL to test")
		}
	}

	if m.quickLoading {
		return func() tea.Msg {
			return errorMsg("Quick test already in progress")
		}
	}

	m.quickLoading = true
	m.quickErr = ""
	m.statusMsg = fmt.Sprintf("Testing %s", targetURL)

	api := m.api
	store := m.recentStore
	return func() tea.Msg {
		if store != nil {
			_ = store.Touch(targetURL)
		}

		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		result, err := api.RunQuickTest(ctx, targetURL)
		if err != nil {
			return quickTestFailedMsg(err.Error())
		}
		return quickTestDoneMsg{result: result}
	}
}

// submitLoadTest validates the load-test form and submits the run. The
// response is an acknowledgement only; the result arrives later on the
// push channel.
func (m *Model) submitLoadTest() tea.Cmd {
	targetURL := strings.TrimSpace(m.loadURL.Value())
	if targetURL == "" {
		return func() tea.Msg {
			return errorMsg("Enter a URL to test")
		}
	}

	requests, err := strconv.Atoi(strings.TrimSpace(m.loadRequests.Value()))
	if err != nil || requests <= 0 {
		return func() tea.Msg {
			return errorMsg("Requests must be a positive number")
		}
	}

	concurrency, err := strconv.Atoi(strings.TrimSpace(m.loadConcurrency.Value()))
	if err != nil || concurrency <= 0 {
		return func() tea.Msg {
			return errorMsg("Concurrency must be a positive number")
		}
	}

	if m.pending != nil {
		return func() tea.Msg {
			return errorMsg("A load test is already running")
		}
	}

	m.statusMsg = fmt.Sprintf("Starting load test: %d requests, %d workers", requests, concurrency)

	api := m.api
	store := m.recentStore
	return func() tea.Msg {
		if store != nil {
			_ = store.Touch(targetURL)
		}

		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		ack, err := api.StartLoadTest(ctx, targetURL, requests, concurrency)
		if err != nil {
			return loadTestFailedMsg(err.Error())
		}
		return loadTestAcceptedMsg{
			ack:         ack,
			url:         targetURL,
			requests:    requests,
			concurrency: concurrency,
		}
	}
}

// loadHistory fetches the most recent completed load tests.
func (m *Model) loadHistory() tea.Cmd {
	api := m.api
	limit := m.historyLimit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		entries, err := api.ListLoadResults(ctx, limit)
		if err != nil {
			return historyFailedMsg(err.Error())
		}
		return historyLoadedMsg{entries: entries}
	}
}

// fetchHistoryDetail retrieves one historical run in full.
func (m *Model) fetchHistoryDetail(id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		result, err := api.GetLoadResult(ctx, id)
		if err != nil {
			return historyFailedMsg(err.Error())
		}
		return historyDetailMsg{result: result}
	}
}

// waitForPush blocks on the push channel for the next event. Update
// re-queues this command after every pushEventMsg so the pump never
// stalls.
func (m *Model) waitForPush() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return pushEventMsg(event)
	}
}

// loadRecentURLs refreshes the remembered target URLs for quick recall.
func (m *Model) loadRecentURLs() tea.Cmd {
	store := m.recentStore
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := store.List(RecentURLLimit)
		if err != nil {
			return nil
		}
		urls := make([]string, 0, len(entries))
		for _, e := range entries {
			urls = append(urls, e.URL)
		}
		return recentURLsMsg{urls: urls}
	}
}

// cycleRecentURL fills the focused URL input with the next remembered
// target.
func (m *Model) cycleRecentURL() {
	if len(m.recentURLs) == 0 {
		m.statusMsg = "No recent URLs yet"
		return
	}

	url := m.recentURLs[m.recentIndex%len(m.recentURLs)]
	m.recentIndex++

	switch m.tab {
	case TabQuick:
		m.quickURL.SetValue(url)
		m.quickURL.CursorEnd()
	case TabLoad:
		m.loadURL.SetValue(url)
		m.loadURL.CursorEnd()
	}
	m.statusMsg = fmt.Sprintf("Recalled %s", url)
}

// copyActiveResult puts the active tab's result on the clipboard as
// JSON.
func (m *Model) copyActiveResult() tea.Cmd {
	var payload interface{}
	switch m.tab {
	case TabQuick:
		if m.quickResult == nil {
			return func() tea.Msg { return errorMsg("No result to copy") }
		}
		payload = m.quickResult
	case TabLoad:
		if m.loadResult == nil {
			return func() tea.Msg { return errorMsg("No result to copy") }
		}
		payload = m.loadResult
	case TabHistory:
		entry := m.selectedHistoryEntry()
		if entry == nil {
			return func() tea.Msg { return errorMsg("No entry selected") }
		}
		payload = entry
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return func() tea.Msg { return errorMsg(fmt.Sprintf("Failed to encode result: %v", err)) }
	}

	if err := clipboard.WriteAll(string(data)); err != nil {
		return func() tea.Msg { return errorMsg(fmt.Sprintf("Failed to copy: %v", err)) }
	}

	m.statusMsg = "Result copied to clipboard"
	return m.clearStatusAfter(StatusMessageDuration)
}

// exportActiveResult puts the active tab's result on the clipboard as
// YAML, which pastes more readably into run notes.
func (m *Model) exportActiveResult() tea.Cmd {
	var payload interface{}
	switch m.tab {
	case TabQuick:
		if m.quickResult == nil {
			return func() tea.Msg { return errorMsg("No result to export") }
		}
		payload = m.quickResult
	default:
		if m.loadResult == nil {
			return func() tea.Msg { return errorMsg("No result to export") }
		}
		payload = m.loadResult
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return func() tea.Msg { return errorMsg(fmt.Sprintf("Failed to encode result: %v", err)) }
	}

	if err := clipboard.WriteAll(string(data)); err != nil {
		return func() tea.Msg { return errorMsg(fmt.Sprintf("Failed to copy: %v", err)) }
	}

	m.statusMsg = "Result copied as YAML"
	return m.clearStatusAfter(StatusMessageDuration)
}

// clearStatusAfter clears the transient status message after a delay.
func (m *Model) clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// applyHistoryFilter recomputes the filtered history view from the
// search query. An empty query shows everything.
func (m *Model) applyHistoryFilter() {
	query := strings.TrimSpace(m.searchQuery)
	if query == "" {
		m.historyFiltered = m.historyEntries
	} else {
		targets := make([]string, len(m.historyEntries))
		for i, entry := range m.historyEntries {
			targets[i] = entry.URL
		}
		matches := fuzzy.Find(query, targets)
		filtered := make([]types.LoadTestResult, 0, len(matches))
		for _, match := range matches {
			filtered = append(filtered, m.historyEntries[match.Index])
		}
		m.historyFiltered = filtered
	}

	if m.historyIndex >= len(m.historyFiltered) {
		m.historyIndex = 0
	}
}

// navigateHistory moves the history selection up or down with wrap.
func (m *Model) navigateHistory(delta int) {
	if len(m.historyFiltered) == 0 {
		return
	}

	m.historyIndex += delta
	if m.historyIndex < 0 {
		m.historyIndex = len(m.historyFiltered) - 1
	} else if m.historyIndex >= len(m.historyFiltered) {
		m.historyIndex = 0
	}
	m.updateHistoryView()
}

// selectedHistoryEntry returns the highlighted entry, or nil.
func (m *Model) selectedHistoryEntry() *types.LoadTestResult {
	if m.historyIndex < 0 || m.historyIndex >= len(m.historyFiltered) {
		return nil
	}
	return &m.historyFiltered[m.historyIndex]
}
