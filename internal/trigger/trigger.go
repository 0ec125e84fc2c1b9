package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"autoselfcontrol/internal/schedule"
	logx "autoselfcontrol/pkg/logx"
)

// Spec renders a trigger as a standard 5-field cron expression.
// cron numbers Sunday 0 where ISO says 7; mod 7 folds both encodings.
func Spec(t schedule.Trigger) string {
	return fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, t.Weekday%7)
}

// NextStart returns the earliest upcoming window start strictly after
// now, across all schedules.
func NextStart(schedules []schedule.Schedule, now time.Time) (time.Time, bool) {
	var best time.Time
	for _, s := range schedules {
		for _, tr := range s.Triggers() {
			cs, err := cron.ParseStandard(Spec(tr))
			if err != nil {
				continue
			}
			next := cs.Next(now)
			if next.IsZero() {
				continue
			}
			if best.IsZero() || next.Before(best) {
				best = next
			}
		}
	}
	return best, !best.IsZero()
}

// Runner fires a callback at every window start while watch mode is in
// the foreground. It is built fresh per config; a reload swaps runners.
type Runner struct {
	c   *cron.Cron
	log logx.Logger
}

func NewRunner(loc *time.Location, log logx.Logger) *Runner {
	if loc == nil {
		loc = time.Local
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{
		c:   cron.New(cron.WithLocation(loc)),
		log: log,
	}
}

// Register adds one cron entry per trigger of every schedule, all
// invoking fire. Duplicate slots across schedules are fine; fire is
// expected to be idempotent within a minute.
func (r *Runner) Register(schedules []schedule.Schedule, fire func()) error {
	wrapped := func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("panic in trigger job",
					logx.Any("panic", rec),
					logx.Stack(logx.StackTrace(1)),
				)
			}
		}()
		fire()
	}
	for _, s := range schedules {
		for _, tr := range s.Triggers() {
			if _, err := r.c.AddFunc(Spec(tr), wrapped); err != nil {
				return fmt.Errorf("register trigger %q: %w", Spec(tr), err)
			}
		}
	}
	return nil
}

// Entries reports how many cron entries are registered.
func (r *Runner) Entries() int { return len(r.c.Entries()) }

func (r *Runner) Start() { r.c.Start() }

// Stop halts the cron loop, waiting for a running job to finish or ctx
// to expire, whichever comes first.
func (r *Runner) Stop(ctx context.Context) {
	select {
	case <-r.c.Stop().Done():
	case <-ctx.Done():
	}
}
