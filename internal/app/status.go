package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"autoselfcontrol/internal/config"
	"autoselfcontrol/internal/schedule"
	"autoselfcontrol/internal/trigger"
)

// Status prints the installation and block state. It works without
// root; probes that need privileges degrade to "unknown".
func (a *App) Status(ctx context.Context) error {
	out := a.deps.Out
	inst := a.installer()

	fmt.Fprintf(out, "launchd job installed: %v\n", inst.Installed())
	if loaded, err := inst.Loaded(ctx); err == nil {
		fmt.Fprintf(out, "launchd job loaded:    %v\n", loaded)
	} else {
		fmt.Fprintf(out, "launchd job loaded:    unknown (%v)\n", err)
	}

	cfg := a.loadAnyConfig()
	if cfg == nil {
		fmt.Fprintf(out, "no configuration found in %s; create one and run -install\n", a.dir)
		return nil
	}

	now := a.deps.Now()
	if active, ok := schedule.FirstActive(cfg.BlockSchedules, now); ok {
		fmt.Fprintf(out, "active schedule:       %s (until %s)\n", active, active.EndOfSchedule(now))
	} else {
		fmt.Fprintf(out, "active schedule:       none\n")
	}
	if next, ok := trigger.NextStart(cfg.BlockSchedules, now); ok {
		fmt.Fprintf(out, "next start:            %s\n", next.Format("Mon 2006-01-02 15:04"))
	}

	if runner, err := a.controller(cfg); err != nil {
		fmt.Fprintf(out, "selfcontrol running:   unknown (%v)\n", err)
	} else if running, err := runner.IsRunning(ctx); err != nil {
		fmt.Fprintf(out, "selfcontrol running:   unknown (%v)\n", err)
	} else {
		fmt.Fprintf(out, "selfcontrol running:   %v\n", running)
	}

	jr, closeJr := a.journalFor(cfg)
	defer closeJr()
	if jr != nil {
		if entries, err := jr.Recent(ctx, 5); err == nil && len(entries) > 0 {
			fmt.Fprintf(out, "recent activity:\n")
			for _, e := range entries {
				line := fmt.Sprintf("  %s  %-9s %s", e.At.Format("2006-01-02 15:04:05"), e.Event, e.Schedule)
				if e.Until != "" {
					line += " until " + e.Until
				}
				if e.Error != "" {
					line += " (" + e.Error + ")"
				}
				fmt.Fprintln(out, strings.TrimRight(line, " "))
			}
		}
	}
	return nil
}

// loadAnyConfig prefers the frozen run configuration over the editable
// one, matching what a launchd-triggered run would see.
func (a *App) loadAnyConfig() *config.Config {
	for _, p := range []string{a.runConfigPath(), a.configPath()} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if cfg, err := config.NewConfigManager(p).Parse(); err == nil {
			return cfg
		}
	}
	return nil
}
