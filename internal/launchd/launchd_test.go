package launchd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"

	"autoselfcontrol/internal/schedule"
	logx "autoselfcontrol/pkg/logx"
)

func iso(w int) *int { return &w }

func TestNewJob(t *testing.T) {
	t.Parallel()
	schedules := []schedule.Schedule{
		{StartHour: 22, StartMinute: 30, EndHour: 2, Weekday: iso(5)},
		{StartHour: 9, EndHour: 17},
	}

	job := NewJob("/usr/local/bin/auto-selfcontrol", "/root/.config/auto-selfcontrol", schedules)

	if job.Label != Label {
		t.Fatalf("Label = %q", job.Label)
	}
	if !job.RunAtLoad {
		t.Fatal("RunAtLoad must be set so reboots mid-window re-run the check")
	}

	wantArgs := []string{"/usr/local/bin/auto-selfcontrol", "-run", "-dir", "/root/.config/auto-selfcontrol"}
	if len(job.ProgramArguments) != len(wantArgs) {
		t.Fatalf("ProgramArguments = %v", job.ProgramArguments)
	}
	for i := range wantArgs {
		if job.ProgramArguments[i] != wantArgs[i] {
			t.Fatalf("ProgramArguments = %v, want %v", job.ProgramArguments, wantArgs)
		}
	}

	// One interval for the Friday schedule, seven for the daily one,
	// in config order.
	if len(job.StartCalendarInterval) != 8 {
		t.Fatalf("StartCalendarInterval has %d slots, want 8", len(job.StartCalendarInterval))
	}
	if first := job.StartCalendarInterval[0]; first != (CalendarInterval{Weekday: 5, Minute: 30, Hour: 22}) {
		t.Fatalf("first interval = %+v", first)
	}
	for i, iv := range job.StartCalendarInterval[1:] {
		if iv.Weekday != i+1 || iv.Hour != 9 || iv.Minute != 0 {
			t.Fatalf("daily interval %d = %+v", i, iv)
		}
	}
}

func testInstaller(t *testing.T) (*Installer, *[]string) {
	t.Helper()
	calls := &[]string{}
	i := NewInstaller(logx.Nop())
	i.plistPath = filepath.Join(t.TempDir(), Label+".plist")
	i.load = func(ctx context.Context, p string) error {
		*calls = append(*calls, "load "+filepath.Base(p))
		return nil
	}
	i.unload = func(ctx context.Context, p string) error {
		*calls = append(*calls, "unload "+filepath.Base(p))
		return nil
	}
	return i, calls
}

func TestInstallFresh(t *testing.T) {
	t.Parallel()
	inst, calls := testInstaller(t)
	job := NewJob("/bin/asc", "/etc/asc", []schedule.Schedule{{StartHour: 9, EndHour: 17, Weekday: iso(1)}})

	if err := inst.Install(context.Background(), job); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0] != "load "+Label+".plist" {
		t.Fatalf("calls = %v", *calls)
	}
	if !inst.Installed() {
		t.Fatal("Installed() should see the plist")
	}

	b, err := os.ReadFile(inst.plistPath)
	if err != nil {
		t.Fatalf("read plist: %v", err)
	}
	var got Job
	if _, err := plist.Unmarshal(b, &got); err != nil {
		t.Fatalf("plist unmarshal: %v", err)
	}
	if got.Label != Label || len(got.StartCalendarInterval) != 1 {
		t.Fatalf("round-tripped job = %+v", got)
	}
	if got.StartCalendarInterval[0].Hour != 9 {
		t.Fatalf("interval = %+v", got.StartCalendarInterval[0])
	}
}

func TestInstallReplacesPrevious(t *testing.T) {
	t.Parallel()
	inst, calls := testInstaller(t)
	if err := os.WriteFile(inst.plistPath, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed old plist: %v", err)
	}

	job := NewJob("/bin/asc", "/etc/asc", []schedule.Schedule{{StartHour: 7, EndHour: 8}})
	if err := inst.Install(context.Background(), job); err != nil {
		t.Fatalf("Install: %v", err)
	}

	want := []string{"unload " + Label + ".plist", "load " + Label + ".plist"}
	if len(*calls) != 2 || (*calls)[0] != want[0] || (*calls)[1] != want[1] {
		t.Fatalf("calls = %v, want %v", *calls, want)
	}

	b, err := os.ReadFile(inst.plistPath)
	if err != nil {
		t.Fatalf("read plist: %v", err)
	}
	if string(b) == "old" {
		t.Fatal("plist was not replaced")
	}
}

func TestUninstall(t *testing.T) {
	t.Parallel()
	inst, calls := testInstaller(t)

	// Absent plist: nothing to do.
	if err := inst.Uninstall(context.Background()); err != nil {
		t.Fatalf("Uninstall (absent): %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("calls = %v, want none", *calls)
	}

	if err := os.WriteFile(inst.plistPath, []byte("job"), 0o644); err != nil {
		t.Fatalf("seed plist: %v", err)
	}
	if err := inst.Uninstall(context.Background()); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0] != "unload "+Label+".plist" {
		t.Fatalf("calls = %v", *calls)
	}
	if inst.Installed() {
		t.Fatal("plist should be gone")
	}
}
