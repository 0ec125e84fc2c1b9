package config

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	logx "autoselfcontrol/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections plus
// safe structured attrs for logging. Blocklist hosts are counted, never
// listed; the hosts themselves stay out of the logs.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 6)
	attrs := make([]logx.Field, 0, 16)

	// Account / SelfControl location.
	if strings.TrimSpace(oldCfg.Username) != strings.TrimSpace(newCfg.Username) ||
		strings.TrimSpace(oldCfg.SelfControlPath) != strings.TrimSpace(newCfg.SelfControlPath) {
		changed = append(changed, "account")
		attrs = append(attrs,
			logx.String("username", strings.TrimSpace(newCfg.Username)),
			logx.String("selfcontrol_path", strings.TrimSpace(newCfg.SelfControlPath)),
		)
	}

	// Blocklist (count only).
	if !reflect.DeepEqual(oldCfg.HostBlacklist, newCfg.HostBlacklist) {
		changed = append(changed, "blocklist")
		attrs = append(attrs, logx.Int("blocklist.hosts", len(newCfg.HostBlacklist)))
	}

	// Schedules. A changed set means the launchd triggers need rewriting.
	if !reflect.DeepEqual(oldCfg.BlockSchedules, newCfg.BlockSchedules) {
		changed = append(changed, "schedules")
		attrs = append(attrs, logx.Int("schedules.count", len(newCfg.BlockSchedules)))
		for i, s := range newCfg.BlockSchedules {
			if i >= 4 {
				attrs = append(attrs, logx.Int("schedules.more", len(newCfg.BlockSchedules)-i))
				break
			}
			attrs = append(attrs, logx.String("schedules."+strconv.Itoa(i), s.String()))
		}
	}

	// Logging.
	oldSys := oldCfg.Logging.SyslogSettings()
	newSys := newCfg.Logging.SyslogSettings()
	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.ConsoleEnabled() != newCfg.Logging.ConsoleEnabled() ||
		oldCfg.Logging.File != newCfg.Logging.File ||
		oldSys != newSys {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.ConsoleEnabled()),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logx.syslog_enabled", newSys.Enabled),
		)
	}

	// Journal (persistence). Nil means disabled.
	var oDriver, nDriver, oBusy, nBusy string
	var oPathSet, nPathSet bool
	if oldCfg.Journal != nil {
		oDriver = strings.TrimSpace(oldCfg.Journal.Driver)
		oBusy = strings.TrimSpace(oldCfg.Journal.BusyTimeout)
		oPathSet = strings.TrimSpace(oldCfg.Journal.Path) != ""
	}
	if newCfg.Journal != nil {
		nDriver = strings.TrimSpace(newCfg.Journal.Driver)
		nBusy = strings.TrimSpace(newCfg.Journal.BusyTimeout)
		nPathSet = strings.TrimSpace(newCfg.Journal.Path) != ""
	}
	if oDriver != nDriver || oBusy != nBusy || oPathSet != nPathSet {
		changed = append(changed, "journal")
		attrs = append(attrs,
			logx.String("journal.driver", nDriver),
			logx.Bool("journal.path_set", nPathSet),
			logx.String("journal.busy_timeout", nBusy),
		)
	}

	// Watch.
	var oInterval, nInterval string
	if oldCfg.Watch != nil {
		oInterval = strings.TrimSpace(oldCfg.Watch.MinReinstallInterval)
	}
	if newCfg.Watch != nil {
		nInterval = strings.TrimSpace(newCfg.Watch.MinReinstallInterval)
	}
	if oInterval != nInterval {
		changed = append(changed, "watch")
		attrs = append(attrs, logx.String("watch.min_reinstall_interval", nInterval))
	}

	sort.Strings(changed)
	return changed, attrs
}
