package journal

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("journal disabled")

// Config configures the journal.
//
// Driver values:
//   - "file": dependency-free JSON Lines backend
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Event classifies a journal entry.
const (
	EventInstall   = "install"
	EventUninstall = "uninstall"
	EventRun       = "run"
	EventSkip      = "skip"
	EventError     = "error"
)

// Entry records one scheduling decision.
// Keep it compact and schema-stable.
type Entry struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Event     string    `json:"event"`
	Schedule  string    `json:"schedule,omitempty"` // compact window label
	Until     string    `json:"until,omitempty"`    // block end timestamp (run events)
	Whitelist bool      `json:"whitelist,omitempty"`
	Error     string    `json:"error,omitempty"`
}
