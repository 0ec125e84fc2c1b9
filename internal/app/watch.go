package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"autoselfcontrol/internal/config"
	"autoselfcontrol/internal/journal"
	"autoselfcontrol/internal/runtime/supervisor"
	"autoselfcontrol/internal/trigger"
	logx "autoselfcontrol/pkg/logx"
)

// Watch runs in the foreground: it installs the launchd job, fires
// scheduling passes from an in-process cron, and reacts to config.json
// edits by validating, reinstalling and re-registering triggers. The
// launchd job stays installed so schedules survive after Watch exits.
func (a *App) Watch(ctx context.Context) error {
	if err := a.requireRoot(); err != nil {
		return err
	}
	cfgPath := a.configPath()
	if _, err := os.Stat(cfgPath); err != nil {
		return fmt.Errorf("no config file found in %s, please create a config file first", a.dir)
	}

	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
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
	cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	cfgm.SetValidator(func(vctx context.Context, c *config.Config) error {
		if err := c.Validate(); err != nil {
			return err
		}
		return a.checkEnvironment(vctx, c)
	})

	jr, closeJr := a.journalFor(cfg)
	defer closeJr()

	if err := a.installJob(ctx, cfg); err != nil {
		return err
	}
	if err := a.saveRunConfig(cfg); err != nil {
		return err
	}
	a.record(jr, journal.Entry{Event: journal.EventInstall})
	a.runIfActive(ctx, cfg, jr)

	// launchctl churn guard: edits arrive in bursts when people fiddle
	// with their schedules.
	minGap := 10 * time.Second
	if cfg.Watch != nil {
		if d, err := config.ParseDurationOrDefault("watch.min_reinstall_interval", cfg.Watch.MinReinstallInterval, minGap); err == nil {
			minGap = d
		}
	}
	lim := rate.NewLimiter(rate.Every(minGap), 1)
	lim.Allow() // the initial install above spends the first token

	sup := supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)
	sub := cfgm.Subscribe(8)
	sup.Go("config.reload", func(sctx context.Context) error {
		defer cfgm.Unsubscribe(sub)
		a.reloadLoop(sctx, cfg, sub, lim, jr)
		return nil
	})
	sup.Go("config.watch", cfgm.Watch)

	a.log.Info("watching configuration",
		logx.String("path", cfgPath),
		logx.Int("schedules", len(cfg.BlockSchedules)),
	)

	<-sup.Context().Done()
	wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = sup.Stop(wctx)
	if ctx.Err() != nil {
		// Signal-driven shutdown is a clean exit.
		if errors.Is(err, context.DeadlineExceeded) {
			a.log.Warn("watch goroutines did not stop in time")
		}
		return nil
	}
	return err
}

// reloadLoop owns the trigger runner and swaps it whenever a changed
// config survives validation. Bursts of updates are coalesced; only the
// newest config is applied.
func (a *App) reloadLoop(ctx context.Context, cfg *config.Config, sub <-chan *config.Config, lim *rate.Limiter, jr journal.Store) {
	runner := a.startTriggers(ctx, cfg, jr)
	defer func() { a.stopTriggers(runner) }()

	last := cfg
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: keep only the latest config in the channel.
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					goto APPLY
				}
			}
		APPLY:
			sections, attrs := config.SummarizeConfigChange(last, newCfg)
			last = newCfg
			if len(sections) == 0 {
				a.log.Debug("config reload received, but no effective changes detected")
				continue
			}
			a.log.Info("config reloaded",
				append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)...,
			)
			a.applyLogging(newCfg)

			if err := lim.Wait(ctx); err != nil {
				return
			}
			if err := a.installJob(ctx, newCfg); err != nil {
				a.log.Error("reinstall after config change failed", logx.Err(err))
				a.record(jr, journal.Entry{Event: journal.EventError, Error: err.Error()})
				continue
			}
			if err := a.saveRunConfig(newCfg); err != nil {
				a.log.Error("saving run configuration failed", logx.Err(err))
				continue
			}
			a.record(jr, journal.Entry{Event: journal.EventInstall})

			a.stopTriggers(runner)
			runner = a.startTriggers(ctx, newCfg, jr)

			// The edited config may have opened a window right now.
			a.runIfActive(ctx, newCfg, jr)
		}
	}
}

func (a *App) startTriggers(ctx context.Context, cfg *config.Config, jr journal.Store) *trigger.Runner {
	r := trigger.NewRunner(time.Local, a.log.With(logx.String("comp", "trigger")))
	err := r.Register(cfg.BlockSchedules, func() {
		// Starting SelfControl can take minutes; bound it anyway.
		pctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		if _, err := a.pass(pctx, cfg, jr); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			a.log.Error("scheduled start failed", logx.Err(err))
		}
	})
	if err != nil {
		// Unreachable with a validated config; registration only fails
		// on out-of-range fields.
		a.log.Error("trigger registration failed", logx.Err(err))
	}
	r.Start()
	a.log.Info("triggers registered", logx.Int("entries", r.Entries()))
	return r
}

func (a *App) stopTriggers(r *trigger.Runner) {
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.Stop(sctx)
}
