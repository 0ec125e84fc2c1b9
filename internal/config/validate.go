package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks everything that can be checked without touching the
// system. Whether the user account or the SelfControl bundle actually
// exist is the caller's business.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Username) == "" {
		return errors.New("no username specified in config")
	}
	if strings.TrimSpace(c.SelfControlPath) == "" {
		return errors.New("the setting 'selfcontrol-path' is required and must point to the location of SelfControl")
	}
	if len(c.BlockSchedules) == 0 {
		return errors.New("you need at least one schedule in 'block-schedules'")
	}
	for i, s := range c.BlockSchedules {
		if s.StartHour < 0 || s.StartHour > 23 || s.EndHour < 0 || s.EndHour > 23 {
			return fmt.Errorf("block-schedules[%d]: hour out of range 0..23", i)
		}
		if s.StartMinute < 0 || s.StartMinute > 59 || s.EndMinute < 0 || s.EndMinute > 59 {
			return fmt.Errorf("block-schedules[%d]: minute out of range 0..59", i)
		}
		if s.Weekday != nil && (*s.Weekday < 0 || *s.Weekday > 7) {
			return fmt.Errorf("block-schedules[%d]: weekday out of range 0..7", i)
		}
	}

	if c.Journal != nil {
		switch strings.ToLower(strings.TrimSpace(c.Journal.Driver)) {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("journal: unknown driver %q", c.Journal.Driver)
		}
		if _, err := ParseDurationField("journal.busy_timeout", c.Journal.BusyTimeout); err != nil {
			return err
		}
	}
	if c.Watch != nil {
		if _, err := ParseDurationField("watch.min_reinstall_interval", c.Watch.MinReinstallInterval); err != nil {
			return err
		}
	}
	return nil
}
