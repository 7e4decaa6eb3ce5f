package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sgendron/loadpulse/internal/client"
	"github.com/sgendron/loadpulse/internal/push"
	"github.com/sgendron/loadpulse/internal/recent"
	"github.com/sgendron/loadpulse/internal/types"
)

// Tab identifies one of the three views. Transitions between tabs are
// unrestricted; activating the history tab refetches the listing.
type Tab int

const (
	TabQuick Tab = iota
	TabLoad
	TabHistory
)

// loadFieldCount is the number of focusable inputs on the load tab.
const loadFieldCount = 3

// pendingLoad is the explicit context for an in-flight load test. At
// most one is live at a time; the id is used to discard push events
// for other runs when the backend provides one.
type pendingLoad struct {
	id          string
	url         string
	requests    int
	concurrency int
	submittedAt time.Time
}

// Model is the TUI state.
type Model struct {
	api          *client.Client
	events       <-chan push.Event
	recentStore  *recent.Store
	historyLimit int

	tab    Tab
	width  int
	height int

	// Insert mode routes printable keys to the focused input
	insertMode bool

	// Quick test tab
	quickURL     textinput.Model
	quickResult  *types.QuickTestResult
	quickErr     string
	quickLoading bool

	// Load test tab
	loadURL         textinput.Model
	loadRequests    textinput.Model
	loadConcurrency textinput.Model
	loadFocus       int
	loadResult      *types.LoadTestResult
	loadErr         string
	pending         *pendingLoad
	resultView      viewport.Model

	// History tab
	historyEntries  []types.LoadTestResult
	historyFiltered []types.LoadTestResult
	historyIndex    int
	historyErr      string
	historyLoading  bool
	searchActive    bool
	searchQuery     string
	historyView     viewport.Model

	// Recent URL recall
	recentURLs  []string
	recentIndex int

	connState push.State
	statusMsg string
	errorMsg  string
}

// Custom message types
type quickTestDoneMsg struct {
	result *types.QuickTestResult
}

type quickTestFailedMsg string

type loadTestAcceptedMsg struct {
	ack         *types.LoadTestAck
	url         string
	requests    int
	concurrency int
}

type loadTestFailedMsg string

type historyLoadedMsg struct {
	entries []types.LoadTestResult
}

type historyFailedMsg string

type historyDetailMsg struct {
	result *types.LoadTestResult
}

type recentURLsMsg struct {
	urls []string
}

type pushEventMsg push.Event

type clearStatusMsg struct{}

type errorMsg string

// Init starts the push-event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForPush(), m.loadRecentURLs())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewports()

	case quickTestDoneMsg:
		m.quickLoading = false
		m.quickErr = ""
		m.quickResult = msg.result
		if msg.result.Success {
			m.statusMsg = "Quick test completed"
		} else {
			m.statusMsg = "Quick test completed (probe failed)"
		}

	case quickTestFailedMsg:
		m.quickLoading = false
		m.quickResult = nil
		m.quickErr = string(msg)

	case loadTestAcceptedMsg:
		m.loadErr = ""
		m.loadResult = nil
		m.pending = &pendingLoad{
			url:         msg.url,
			requests:    msg.requests,
			concurrency: msg.concurrency,
			submittedAt: time.Now(),
		}
		if msg.ack != nil {
			m.pending.id = msg.ack.ID
		}
		m.statusMsg = "Load test started, waiting for results"

	case loadTestFailedMsg:
		m.pending = nil
		m.loadResult = nil
		m.loadErr = string(msg)

	case historyLoadedMsg:
		m.historyLoading = false
		m.historyErr = ""
		m.historyEntries = msg.entries
		m.historyIndex = 0
		m.applyHistoryFilter()
		m.updateHistoryView()

	case historyFailedMsg:
		m.historyLoading = false
		m.historyErr = string(msg)

	case historyDetailMsg:
		// Selecting a history entry lands on the load tab with the
		// full record rendered.
		m.loadErr = ""
		m.pending = nil
		m.loadResult = msg.result
		m.switchTab(TabLoad)
		m.updateResultView()

	case recentURLsMsg:
		m.recentURLs = msg.urls
		m.recentIndex = 0

	case pushEventMsg:
		m.handlePushEvent(push.Event(msg))
		// Always keep pumping; the channel reconnects on its own.
		return m, m.waitForPush()

	case clearStatusMsg:
		m.statusMsg = ""

	case errorMsg:
		m.errorMsg = string(msg)
	}

	return m, cmd
}

// handlePushEvent routes one push-channel event to the matching panel.
func (m *Model) handlePushEvent(event push.Event) {
	switch event.Type {
	case push.TypeState:
		m.connState = event.State

	case push.TypeQuickResult:
		// The backend broadcasts quick results to every session; the
		// panel shows whichever is newest, same as the response path.
		m.quickLoading = false
		m.quickErr = ""
		m.quickResult = event.Quick

	case push.TypeLoadResult:
		if m.pending != nil && m.pending.id != "" && event.Load.ID != "" && event.Load.ID != m.pending.id {
			return // some other run's result
		}
		m.pending = nil
		m.loadErr = ""
		m.loadResult = event.Load
		m.statusMsg = "Load test completed"
		m.updateResultView()
	}
}

// switchTab activates exactly one tab. Entering the history tab always
// refreshes the listing; the other tabs keep whatever they showed.
func (m *Model) switchTab(tab Tab) tea.Cmd {
	m.tab = tab
	m.insertMode = false
	if tab == TabHistory {
		m.historyLoading = true
		m.historyErr = ""
		return m.loadHistory()
	}
	return nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	return m.render()
}
