package tui

import "time"

const (
	// RequestTimeout bounds every backend HTTP call made from the TUI
	RequestTimeout = 60 * time.Second

	// StatusMessageDuration is how long transient status messages stay
	// in the status bar
	StatusMessageDuration = 3 * time.Second

	// RecentURLLimit is how many remembered target URLs to cycle through
	RecentURLLimit = 10

	// Content Area Offsets
	ContentOffsetStandard = 7 // m.height - 7 for result viewports
	StatusBarHeight       = 1

	// URL input sizing
	URLInputWidth    = 60
	NumberInputWidth = 8
)
