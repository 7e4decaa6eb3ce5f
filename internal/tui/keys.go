package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyPress routes key presses based on the current input mode.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if m.searchActive {
		return m.handleSearchKeys(msg)
	}
	if m.insertMode {
		return m.handleInsertKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles navigation-mode keys.
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit

	case "1":
		return m.switchTab(TabQuick)
	case "2":
		return m.switchTab(TabLoad)
	case "3":
		return m.switchTab(TabHistory)

	case "i":
		if m.tab == TabHistory {
			return nil
		}
		m.enterInsertMode()
		return nil

	case "tab":
		if m.tab == TabLoad {
			m.cycleLoadFocus(1)
		}
		return nil
	case "shift+tab":
		if m.tab == TabLoad {
			m.cycleLoadFocus(-1)
		}
		return nil

	case "enter":
		switch m.tab {
		case TabQuick:
			return m.submitQuickTest()
		case TabLoad:
			return m.submitLoadTest()
		case TabHistory:
			if entry := m.selectedHistoryEntry(); entry != nil {
				m.statusMsg = "Loading run " + entry.ID
				return m.fetchHistoryDetail(entry.ID)
			}
		}
		return nil

	case "j", "down":
		if m.tab == TabHistory {
			m.navigateHistory(1)
		} else if m.tab == TabLoad && m.loadResult != nil {
			m.resultView.LineDown(1)
		}
		return nil
	case "k", "up":
		if m.tab == TabHistory {
			m.navigateHistory(-1)
		} else if m.tab == TabLoad && m.loadResult != nil {
			m.resultView.LineUp(1)
		}
		return nil

	case "/":
		if m.tab == TabHistory {
			m.searchActive = true
			m.searchQuery = ""
		}
		return nil

	case "r":
		if m.tab == TabHistory {
			m.historyLoading = true
			m.historyErr = ""
			return m.loadHistory()
		}
		return nil

	case "u":
		m.cycleRecentURL()
		return nil

	case "c":
		return m.copyActiveResult()
	case "e":
		return m.exportActiveResult()

	case "esc":
		m.errorMsg = ""
		m.statusMsg = ""
		if m.tab == TabHistory && m.searchQuery != "" {
			m.searchQuery = ""
			m.applyHistoryFilter()
			m.updateHistoryView()
		}
		return nil
	}

	return nil
}

// handleInsertKeys routes printable keys into the focused text input.
func (m *Model) handleInsertKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.exitInsertMode()
		return nil

	case "enter":
		m.exitInsertMode()
		switch m.tab {
		case TabQuick:
			return m.submitQuickTest()
		case TabLoad:
			return m.submitLoadTest()
		}
		return nil

	case "tab":
		if m.tab == TabLoad {
			m.cycleLoadFocus(1)
		}
		return nil
	case "shift+tab":
		if m.tab == TabLoad {
			m.cycleLoadFocus(-1)
		}
		return nil
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabQuick:
		m.quickURL, cmd = m.quickURL.Update(msg)
	case TabLoad:
		switch m.loadFocus {
		case 0:
			m.loadURL, cmd = m.loadURL.Update(msg)
		case 1:
			m.loadRequests, cmd = m.loadRequests.Update(msg)
		case 2:
			m.loadConcurrency, cmd = m.loadConcurrency.Update(msg)
		}
	}
	return cmd
}

// handleSearchKeys edits the history fuzzy filter.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.searchActive = false
		m.searchQuery = ""
		m.applyHistoryFilter()
		m.updateHistoryView()
		return nil

	case "enter":
		m.searchActive = false
		return nil

	case "backspace":
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
			m.applyHistoryFilter()
			m.updateHistoryView()
		}
		return nil
	}

	if msg.Type == tea.KeyRunes {
		m.searchQuery += string(msg.Runes)
		m.applyHistoryFilter()
		m.updateHistoryView()
	}
	return nil
}

// enterInsertMode focuses the active tab's input.
func (m *Model) enterInsertMode() {
	m.insertMode = true
	switch m.tab {
	case TabQuick:
		m.quickURL.Focus()
	case TabLoad:
		m.focusLoadField()
	}
}

// exitInsertMode blurs every input.
func (m *Model) exitInsertMode() {
	m.insertMode = false
	m.quickURL.Blur()
	m.loadURL.Blur()
	m.loadRequests.Blur()
	m.loadConcurrency.Blur()
}

// cycleLoadFocus moves between the load-test form fields with wrap.
func (m *Model) cycleLoadFocus(delta int) {
	m.loadFocus = (m.loadFocus + delta + loadFieldCount) % loadFieldCount
	if m.insertMode {
		m.focusLoadField()
	}
}

func (m *Model) focusLoadField() {
	m.loadURL.Blur()
	m.loadRequests.Blur()
	m.loadConcurrency.Blur()
	switch m.loadFocus {
	case 0:
		m.loadURL.Focus()
	case 1:
		m.loadRequests.Focus()
	case 2:
		m.loadConcurrency.Focus()
	}
}
