package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"autoselfcontrol/internal/config"
	"autoselfcontrol/internal/journal"
	"autoselfcontrol/internal/schedule"
	"autoselfcontrol/internal/selfcontrol"
	logx "autoselfcontrol/pkg/logx"
)

// Run performs one scheduling pass from the frozen run configuration.
// This is what launchd invokes at every schedule boundary.
func (a *App) Run(ctx context.Context) error {
	if err := a.requireRoot(); err != nil {
		return err
	}
	path := a.runConfigPath()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("run configuration not found in %s; make sure auto-selfcontrol is activated with -install", a.dir)
	}
	cfg, err := config.NewConfigManager(path).Parse()
	if err != nil {
		return err
	}
	// The file was validated at install time; don't second-guess it here
	// or an edited config.json could never be rolled back by -install.
	a.applyLogging(cfg)

	jr, closeJr := a.journalFor(cfg)
	defer closeJr()

	_, err = a.pass(ctx, cfg, jr)
	return err
}

// pass evaluates the schedules once and starts SelfControl when one is
// active. It reports whether a block was started.
func (a *App) pass(ctx context.Context, cfg *config.Config, jr journal.Store) (bool, error) {
	a.passMu.Lock()
	defer a.passMu.Unlock()

	runner, err := a.controller(cfg)
	if err != nil {
		return false, err
	}

	running, err := runner.IsRunning(ctx)
	if err != nil {
		a.record(jr, journal.Entry{Event: journal.EventError, Error: err.Error()})
		return false, err
	}
	if running {
		a.log.Error("SelfControl is already running, ignoring this pass")
		a.record(jr, journal.Entry{Event: journal.EventSkip, Error: ErrAlreadyRunning.Error()})
		return false, ErrAlreadyRunning
	}

	now := a.deps.Now()
	active, ok := schedule.FirstActive(cfg.BlockSchedules, now)
	if !ok {
		a.log.Warn("no schedule is active at the moment")
		a.record(jr, journal.Entry{Event: journal.EventSkip})
		return false, nil
	}

	until := active.EndOfSchedule(now)
	blocklist := a.blocklistPath()
	if err := selfcontrol.WriteBlocklist(blocklist, cfg.HostBlacklist, active.BlockAsWhitelist); err != nil {
		a.record(jr, journal.Entry{Event: journal.EventError, Schedule: active.String(), Error: err.Error()})
		return false, fmt.Errorf("write blocklist: %w", err)
	}

	a.log.Info("starting SelfControl",
		logx.String("schedule", active.String()),
		logx.String("until", until),
		logx.Bool("whitelist", active.BlockAsWhitelist),
	)
	if err := runner.Start(ctx, blocklist, until); err != nil {
		a.record(jr, journal.Entry{Event: journal.EventError, Schedule: active.String(), Error: err.Error()})
		return false, err
	}
	a.log.Info("SelfControl started", logx.String("until", until))
	a.record(jr, journal.Entry{
		Event:     journal.EventRun,
		Schedule:  active.String(),
		Until:     until,
		Whitelist: active.BlockAsWhitelist,
	})
	return true, nil
}

// runIfActive starts a block right away when a window is already open,
// instead of waiting for the next launchd wake-up. An already running
// block is fine here, not an error.
func (a *App) runIfActive(ctx context.Context, cfg *config.Config, jr journal.Store) {
	if !schedule.AnyActive(cfg.BlockSchedules, a.deps.Now()) {
		return
	}
	a.log.Info("active schedule found; starting SelfControl (this can take a few minutes)")
	if _, err := a.pass(ctx, cfg, jr); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		a.log.Error("SelfControl start failed", logx.Err(err))
	}
}
