package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.loadpulse)
	ConfigDir string

	// SettingsFile is the settings file (JSONC, comments allowed)
	SettingsFile string

	// DatabasePath is the SQLite database for recently used URLs
	DatabasePath string

	// LogFile receives push-channel diagnostics while the TUI owns the
	// terminal
	LogFile string
)

// Settings holds the user-tunable knobs. Zero values fall back to the
// defaults below at load time.
type Settings struct {
	ServerURL        string `json:"server_url"`
	HistoryLimit     int    `json:"history_limit"`
	ReconnectDelayMs int    `json:"reconnect_delay_ms"`
}

const (
	DefaultServerURL        = "http://localhost:8080"
	DefaultHistoryLimit     = 20
	DefaultReconnectDelayMs = 3000
)

var defaultSettingsFile = []byte(`{
  // Address of the load-testing backend
  "server_url": "http://localhost:8080",

  // How many history entries to fetch per refresh
  "history_limit": 20,

  // Fixed delay between push-channel reconnection attempts
  "reconnect_delay_ms": 3000
}
`)

// Initialize sets up the configuration directory and seeds the
// settings file on first run.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".loadpulse")
	SettingsFile = filepath.Join(ConfigDir, "settings.jsonc")
	DatabasePath = filepath.Join(ConfigDir, "loadpulse.db")
	LogFile = filepath.Join(ConfigDir, "loadpulse.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(SettingsFile, defaultSettingsFile, FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// Load reads the settings file and fills in defaults for anything left
// unset. A missing file is not an error; it just yields the defaults.
func Load() (*Settings, error) {
	return LoadFrom(SettingsFile)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	settings := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	} else {
		if err := json.Unmarshal(jsonc.ToJSON(data), settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if settings.ServerURL == "" {
		settings.ServerURL = DefaultServerURL
	}
	if settings.HistoryLimit <= 0 {
		settings.HistoryLimit = DefaultHistoryLimit
	}
	if settings.ReconnectDelayMs <= 0 {
		settings.ReconnectDelayMs = DefaultReconnectDelayMs
	}

	return settings, nil
}

// ReconnectDelay returns the reconnect setting as a duration.
func (s *Settings) ReconnectDelay() time.Duration {
	return time.Duration(s.ReconnectDelayMs) * time.Millisecond
}
