package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"autoselfcontrol/internal/config"
	"autoselfcontrol/internal/journal"
	logx "autoselfcontrol/pkg/logx"
)

// Install validates config.json, writes and loads the launchd job,
// freezes the run configuration, and starts a block immediately when a
// schedule window is already open.
func (a *App) Install(ctx context.Context) error {
	if err := a.requireRoot(); err != nil {
		return err
	}
	cfgPath := a.configPath()
	if _, err := os.Stat(cfgPath); err != nil {
		return fmt.Errorf("no config file found in %s, please create a config file first", a.dir)
	}
	cfg, err := config.NewConfigManager(cfgPath).Parse()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.applyLogging(cfg)
	if err := a.checkEnvironment(ctx, cfg); err != nil {
		return err
	}

	jr, closeJr := a.journalFor(cfg)
	defer closeJr()

	if err := a.installJob(ctx, cfg); err != nil {
		a.record(jr, journal.Entry{Event: journal.EventError, Error: err.Error()})
		return err
	}
	if err := a.saveRunConfig(cfg); err != nil {
		return err
	}
	a.record(jr, journal.Entry{Event: journal.EventInstall})
	a.log.Info("auto-selfcontrol installed", logx.Int("schedules", len(cfg.BlockSchedules)))

	a.runIfActive(ctx, cfg, jr)
	return nil
}

// Uninstall unloads and removes the launchd job and the frozen run
// state. The editable config.json stays. A block that is already
// running keeps running; SelfControl cannot be stopped early.
func (a *App) Uninstall(ctx context.Context) error {
	if err := a.requireRoot(); err != nil {
		return err
	}

	// The run config may already be gone; uninstall still has to work.
	var cfg *config.Config
	if c, err := config.NewConfigManager(a.runConfigPath()).Parse(); err == nil {
		cfg = c
		a.applyLogging(cfg)
	}

	jr, closeJr := a.journalFor(cfg)
	defer closeJr()

	if err := a.installer().Uninstall(ctx); err != nil {
		a.record(jr, journal.Entry{Event: journal.EventError, Error: err.Error()})
		return err
	}
	for _, p := range []string{a.runConfigPath(), a.blocklistPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.Warn("cleanup failed", logx.String("path", p), logx.Err(err))
		}
	}
	a.record(jr, journal.Entry{Event: journal.EventUninstall})
	a.log.Info("auto-selfcontrol uninstalled")
	return nil
}
