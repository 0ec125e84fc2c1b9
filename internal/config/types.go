package config

import (
	"autoselfcontrol/internal/schedule"
)

// Config is the on-disk configuration. The top-level keys keep the
// hyphenated names of the original config.json format so existing files
// keep working; newer optional sections use snake_case like the rest of
// the ecosystem.
type Config struct {
	// Username is the macOS account SelfControl runs as.
	Username string `json:"username"`

	// SelfControlPath is the path to SelfControl.app.
	SelfControlPath string `json:"selfcontrol-path"`

	// HostBlacklist is the list of hosts written into SelfControl's
	// blocklist. May be empty; that is a warning, not an error.
	HostBlacklist []string `json:"host-blacklist,omitempty"`

	// BlockSchedules holds the weekly block windows in priority order:
	// when several overlap, the first active one wins.
	BlockSchedules []schedule.Schedule `json:"block-schedules"`

	Logging LoggingConfig `json:"logging,omitempty"`

	// Journal controls the optional persistence of scheduling decisions.
	// If omitted, nothing is persisted.
	Journal *JournalConfig `json:"journal,omitempty"`

	// Watch tunes foreground watch mode. If omitted, defaults apply.
	Watch *WatchConfig `json:"watch,omitempty"`
}

type LoggingConfig struct {
	Level   string         `json:"level,omitempty"`
	Console *bool          `json:"console,omitempty"`
	File    LoggingFile    `json:"file,omitempty"`
	Syslog  *LoggingSyslog `json:"syslog,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// LoggingSyslog controls the syslog sink. A nil section means enabled
// with defaults, matching the behavior of earlier releases that always
// logged to syslog.
type LoggingSyslog struct {
	Enabled    bool   `json:"enabled"`
	Tag        string `json:"tag,omitempty"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// JournalConfig controls the optional persistence layer.
//
// Example:
//
//	"journal": { "driver": "file", "path": "./journal" }
type JournalConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// WatchConfig tunes foreground watch mode.
//
// MinReinstallInterval is a Go duration string. It throttles how often a
// config change may re-register the launchd job, so an editor saving in
// bursts doesn't thrash launchctl.
type WatchConfig struct {
	MinReinstallInterval string `json:"min_reinstall_interval,omitempty"`
}

// ConsoleEnabled reports whether console logging is on. It defaults to
// true when the field is omitted; earlier releases always printed to
// stdout.
func (l LoggingConfig) ConsoleEnabled() bool {
	if l.Console == nil {
		return true
	}
	return *l.Console
}

// SyslogSettings resolves the syslog section with defaults applied.
func (l LoggingConfig) SyslogSettings() LoggingSyslog {
	if l.Syslog == nil {
		return LoggingSyslog{Enabled: true}
	}
	return *l.Syslog
}
