package launchd

import (
	"context"
	"errors"
	"os"

	"howett.net/plist"

	"autoselfcontrol/internal/schedule"
	"autoselfcontrol/pkg/launchctl"
	logx "autoselfcontrol/pkg/logx"
)

const (
	// Label identifies the daemon to launchd. It matches earlier
	// releases so an upgrade replaces the old job instead of doubling it.
	Label = "com.parrot-bytes.auto-selfcontrol"

	// PlistPath is where the job definition lives. LaunchDaemons, not
	// LaunchAgents: the run needs root.
	PlistPath = "/Library/LaunchDaemons/" + Label + ".plist"
)

// Job is the launchd property list describing when to wake us up.
type Job struct {
	Label                 string             `plist:"Label"`
	ProgramArguments      []string           `plist:"ProgramArguments"`
	StartCalendarInterval []CalendarInterval `plist:"StartCalendarInterval"`
	RunAtLoad             bool               `plist:"RunAtLoad"`
}

// CalendarInterval is one launchd wake-up slot.
type CalendarInterval struct {
	Weekday int `plist:"Weekday"`
	Minute  int `plist:"Minute"`
	Hour    int `plist:"Hour"`
}

// NewJob builds the launchd job for the given schedules. Every schedule
// contributes one interval per applicable weekday, in config order;
// launchd tolerates duplicate slots, so overlapping schedules need no
// dedup here. RunAtLoad keeps blocks alive across reboots mid-window.
func NewJob(binPath, settingsDir string, schedules []schedule.Schedule) Job {
	intervals := make([]CalendarInterval, 0, len(schedules))
	for _, s := range schedules {
		for _, t := range s.Triggers() {
			intervals = append(intervals, CalendarInterval{
				Weekday: t.Weekday,
				Minute:  t.Minute,
				Hour:    t.Hour,
			})
		}
	}
	return Job{
		Label:                 Label,
		ProgramArguments:      []string{binPath, "-run", "-dir", settingsDir},
		StartCalendarInterval: intervals,
		RunAtLoad:             true,
	}
}

// Installer writes the job plist and registers it with launchd.
type Installer struct {
	plistPath string
	log       logx.Logger

	load   func(ctx context.Context, plistPath string) error
	unload func(ctx context.Context, plistPath string) error
}

func NewInstaller(log logx.Logger) *Installer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Installer{
		plistPath: PlistPath,
		log:       log,
		load:      launchctl.Load,
		unload:    launchctl.Unload,
	}
}

// Install replaces any previous job definition and loads the new one.
func (i *Installer) Install(ctx context.Context, job Job) error {
	if _, err := os.Stat(i.plistPath); err == nil {
		i.log.Info("removing previous launchd job", logx.String("plist", i.plistPath))
		// A stale plist may reference a job launchd never loaded;
		// unload failure must not block the reinstall.
		if err := i.unload(ctx, i.plistPath); err != nil {
			i.log.Warn("launchd unload failed", logx.Err(err))
		}
		if err := os.Remove(i.plistPath); err != nil {
			return err
		}
	}

	b, err := plist.MarshalIndent(job, plist.XMLFormat, "\t")
	if err != nil {
		return err
	}
	if err := os.WriteFile(i.plistPath, b, 0o644); err != nil {
		return err
	}
	if err := i.load(ctx, i.plistPath); err != nil {
		return err
	}
	i.log.Info("launchd job installed",
		logx.String("plist", i.plistPath),
		logx.Int("intervals", len(job.StartCalendarInterval)),
	)
	return nil
}

// Uninstall unloads the job and deletes its plist. A missing plist is a
// no-op, not an error.
func (i *Installer) Uninstall(ctx context.Context) error {
	if _, err := os.Stat(i.plistPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			i.log.Info("no launchd job installed", logx.String("plist", i.plistPath))
			return nil
		}
		return err
	}
	if err := i.unload(ctx, i.plistPath); err != nil {
		i.log.Warn("launchd unload failed", logx.Err(err))
	}
	if err := os.Remove(i.plistPath); err != nil {
		return err
	}
	i.log.Info("launchd job removed", logx.String("plist", i.plistPath))
	return nil
}

// Installed reports whether the job plist is present.
func (i *Installer) Installed() bool {
	_, err := os.Stat(i.plistPath)
	return err == nil
}

// Loaded reports whether launchd currently knows the job.
func (i *Installer) Loaded(ctx context.Context) (bool, error) {
	return launchctl.IsLoaded(ctx, Label)
}
