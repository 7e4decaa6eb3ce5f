package tui

import (
	"context"
	"log"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sgendron/loadpulse/internal/client"
	"github.com/sgendron/loadpulse/internal/config"
	"github.com/sgendron/loadpulse/internal/push"
	"github.com/sgendron/loadpulse/internal/recent"
)

// New creates a TUI model wired to the given backend client and push
// event stream. The recent-URL store may be nil.
func New(api *client.Client, events <-chan push.Event, store *recent.Store, historyLimit int) Model {
	quickURL := textinput.New()
	quickURL.Placeholder = "https://example.com"
	quickURL.Width = URLInputWidth
	quickURL.CharLimit = 2048

	loadURL := textinput.New()
	loadURL.Placeholder = "https://example.com"
	loadURL.Width = URLInputWidth
	loadURL.CharLimit = 2048

	loadRequests := textinput.New()
	loadRequests.Placeholder = "100"
	loadRequests.SetValue("100")
	loadRequests.Width = NumberInputWidth
	loadRequests.CharLimit = 7

	loadConcurrency := textinput.New()
	loadConcurrency.Placeholder = "10"
	loadConcurrency.SetValue("10")
	loadConcurrency.Width = NumberInputWidth
	loadConcurrency.CharLimit = 5

	return Model{
		api:             api,
		events:          events,
		recentStore:     store,
		historyLimit:    historyLimit,
		tab:             TabQuick,
		quickURL:        quickURL,
		loadURL:         loadURL,
		loadRequests:    loadRequests,
		loadConcurrency: loadConcurrency,
		resultView:      viewport.New(80, 20),
		historyView:     viewport.New(80, 20),
	}
}

// Run starts the TUI against the configured backend. It owns the push
// channel for the lifetime of the program and tears it down on exit.
func Run() error {
	if err := config.Initialize(); err != nil {
		return err
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; push diagnostics go to the log file.
	var logger *log.Logger
	if logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.FilePermissions); err == nil {
		defer logFile.Close()
		logger = log.New(logFile, "", log.LstdFlags)
	}

	api := client.New(settings.ServerURL)

	channel := push.New(api.WebSocketURL(), settings.ReconnectDelay(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go channel.Run(ctx)

	store, err := recent.NewStore(config.DatabasePath)
	if err != nil {
		// The URL memory is a convenience; run without it.
		if logger != nil {
			logger.Printf("recent-url store unavailable: %v", err)
		}
		store = nil
	} else {
		defer store.Close()
	}

	m := New(api, channel.Events(), store, settings.HistoryLimit)

	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
