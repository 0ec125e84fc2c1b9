package schedule

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

// The first week of January 2024 runs Monday the 1st through Sunday the
// 7th, which keeps weekday expectations readable below.
func jan(day, hour, min int) time.Time {
	return time.Date(2024, time.January, day, hour, min, 0, 0, time.UTC)
}

func iso(w int) *int { return &w }

func TestWeekdays(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		s    Schedule
		want []int
	}{
		{name: "every day", s: Schedule{}, want: []int{1, 2, 3, 4, 5, 6, 7}},
		{name: "single weekday", s: Schedule{Weekday: iso(3)}, want: []int{3}},
		{name: "sunday as 7", s: Schedule{Weekday: iso(7)}, want: []int{7}},
		{name: "sunday as 0", s: Schedule{Weekday: iso(0)}, want: []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.Weekdays()
			if len(got) != len(tt.want) {
				t.Fatalf("Weekdays() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Weekdays() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestIsActiveSameDayWindow(t *testing.T) {
	t.Parallel()
	// 09:00-17:00 on Mondays.
	s := Schedule{StartHour: 9, EndHour: 17, Weekday: iso(1)}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "at start", now: jan(1, 9, 0), want: true},
		{name: "inside", now: jan(1, 12, 30), want: true},
		{name: "at end inclusive", now: jan(1, 17, 0), want: true},
		{name: "minute before start", now: jan(1, 8, 59), want: false},
		{name: "minute after end", now: jan(1, 17, 1), want: false},
		{name: "wrong day", now: jan(2, 10, 0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsActive(tt.now); got != tt.want {
				t.Fatalf("IsActive(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestIsActiveMidnightCrossing(t *testing.T) {
	t.Parallel()
	// 22:00-02:00 starting Friday evening, ending Saturday morning.
	s := Schedule{StartHour: 22, EndHour: 2, Weekday: iso(5)}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "friday before start", now: jan(5, 21, 59), want: false},
		{name: "friday at start", now: jan(5, 22, 0), want: true},
		{name: "friday late evening", now: jan(5, 23, 0), want: true},
		{name: "saturday small hours", now: jan(6, 1, 0), want: true},
		{name: "saturday at end inclusive", now: jan(6, 2, 0), want: true},
		{name: "saturday after end", now: jan(6, 3, 0), want: false},
		{name: "thursday evening", now: jan(4, 23, 0), want: false},
		{name: "sunday small hours", now: jan(7, 1, 0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsActive(tt.now); got != tt.want {
				t.Fatalf("IsActive(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestIsActiveEveryDayIgnoresWeekday(t *testing.T) {
	t.Parallel()
	s := Schedule{StartHour: 9, EndHour: 17}

	// Same time of day must evaluate identically on all seven days.
	for day := 1; day <= 7; day++ {
		if !s.IsActive(jan(day, 10, 0)) {
			t.Fatalf("expected active on day %d at 10:00", day)
		}
		if s.IsActive(jan(day, 8, 0)) {
			t.Fatalf("expected inactive on day %d at 08:00", day)
		}
	}
}

func TestIsActiveSundayEncodings(t *testing.T) {
	t.Parallel()
	// A Sunday window crossing midnight into Monday must behave the same
	// whether Sunday is written as 7 or as 0.
	for _, w := range []int{7, 0} {
		s := Schedule{StartHour: 22, EndHour: 2, Weekday: iso(w)}

		if !s.IsActive(jan(7, 23, 0)) {
			t.Fatalf("weekday=%d: expected active Sunday 23:00", w)
		}
		if !s.IsActive(jan(8, 1, 0)) {
			t.Fatalf("weekday=%d: expected active Monday 01:00", w)
		}
		if s.IsActive(jan(7, 1, 0)) {
			t.Fatalf("weekday=%d: expected inactive Sunday 01:00", w)
		}
		if s.IsActive(jan(8, 3, 0)) {
			t.Fatalf("weekday=%d: expected inactive Monday 03:00", w)
		}
	}
}

func TestIsActiveZeroLengthWindow(t *testing.T) {
	t.Parallel()
	s := Schedule{StartHour: 10, EndHour: 10, Weekday: iso(3)}

	if !s.IsActive(jan(3, 10, 0)) {
		t.Fatal("expected active at the exact window instant")
	}
	if s.IsActive(jan(3, 10, 0).Add(30 * time.Second)) {
		t.Fatal("expected inactive 30s past a zero-length window")
	}
	if s.IsActive(jan(3, 9, 59)) {
		t.Fatal("expected inactive before a zero-length window")
	}
}

func TestEndOfSchedule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		zone   *time.Location
		s      Schedule
		now    time.Time
		want   string
		suffix string
	}{
		{
			name: "whole hour offset",
			zone: time.FixedZone("CET", 3600),
			s:    Schedule{StartHour: 9, EndHour: 17, EndMinute: 30},
			want: "2024-01-05T17:30:00+0100",
		},
		{
			name:   "half hour offset uses hundredths",
			zone:   time.FixedZone("ACDT", 10*3600+1800),
			s:      Schedule{StartHour: 9, EndHour: 17},
			suffix: "+1050",
		},
		{
			name:   "negative half hour offset",
			zone:   time.FixedZone("NST", -(3*3600 + 1800)),
			s:      Schedule{StartHour: 9, EndHour: 17},
			suffix: "-0350",
		},
		{
			name:   "utc",
			zone:   time.UTC,
			s:      Schedule{StartHour: 9, EndHour: 17},
			suffix: "+0000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2024, time.January, 5, 10, 0, 0, 0, tt.zone)
			got := tt.s.EndOfSchedule(now)
			if tt.want != "" && got != tt.want {
				t.Fatalf("EndOfSchedule() = %q, want %q", got, tt.want)
			}
			if tt.suffix != "" && !strings.HasSuffix(got, tt.suffix) {
				t.Fatalf("EndOfSchedule() = %q, want offset suffix %q", got, tt.suffix)
			}
			if ok, _ := regexp.MatchString(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{4}$`, got); !ok {
				t.Fatalf("EndOfSchedule() = %q, not a timestamp with a 5-char offset", got)
			}
		})
	}
}

func TestEndOfScheduleKeepsSameDayAnchor(t *testing.T) {
	t.Parallel()
	// For a midnight-crossing window the end stays anchored to now's
	// calendar day; it is not advanced to tomorrow.
	s := Schedule{StartHour: 22, EndHour: 2, Weekday: iso(5)}
	got := s.EndOfSchedule(jan(5, 23, 0))
	if !strings.HasPrefix(got, "2024-01-05T02:00:00") {
		t.Fatalf("EndOfSchedule() = %q, want the 2024-01-05 anchor", got)
	}
}

func TestTriggers(t *testing.T) {
	t.Parallel()

	t.Run("every day expands to seven", func(t *testing.T) {
		s := Schedule{StartHour: 7, StartMinute: 45, EndHour: 9}
		trig := s.Triggers()
		if len(trig) != 7 {
			t.Fatalf("len(Triggers()) = %d, want 7", len(trig))
		}
		for i, tr := range trig {
			want := Trigger{Weekday: i + 1, Hour: 7, Minute: 45}
			if tr != want {
				t.Fatalf("Triggers()[%d] = %+v, want %+v", i, tr, want)
			}
		}
	})

	t.Run("single weekday", func(t *testing.T) {
		s := Schedule{StartHour: 22, StartMinute: 15, EndHour: 2, Weekday: iso(5)}
		trig := s.Triggers()
		if len(trig) != 1 {
			t.Fatalf("len(Triggers()) = %d, want 1", len(trig))
		}
		if want := (Trigger{Weekday: 5, Hour: 22, Minute: 15}); trig[0] != want {
			t.Fatalf("Triggers()[0] = %+v, want %+v", trig[0], want)
		}
	})
}

func TestFirstActive(t *testing.T) {
	t.Parallel()
	early := Schedule{StartHour: 9, EndHour: 17}
	late := Schedule{StartHour: 10, EndHour: 18}

	t.Run("input order breaks overlap ties", func(t *testing.T) {
		got, ok := FirstActive([]Schedule{early, late}, jan(1, 12, 0))
		if !ok {
			t.Fatal("expected an active schedule")
		}
		if got.String() != early.String() {
			t.Fatalf("FirstActive() = %v, want %v", got, early)
		}

		got, ok = FirstActive([]Schedule{late, early}, jan(1, 12, 0))
		if !ok {
			t.Fatal("expected an active schedule")
		}
		if got.String() != late.String() {
			t.Fatalf("FirstActive() = %v, want %v", got, late)
		}
	})

	t.Run("none active", func(t *testing.T) {
		if _, ok := FirstActive([]Schedule{early, late}, jan(1, 5, 0)); ok {
			t.Fatal("expected no active schedule at 05:00")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, ok := FirstActive(nil, jan(1, 12, 0)); ok {
			t.Fatal("expected no active schedule for empty input")
		}
	})
}

func TestString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		s    Schedule
		want string
	}{
		{s: Schedule{StartHour: 9, EndHour: 17, EndMinute: 30}, want: "09:00-17:30 daily"},
		{s: Schedule{StartHour: 22, EndHour: 2, Weekday: iso(5)}, want: "22:00-02:00 fri"},
		{s: Schedule{StartHour: 22, EndHour: 2, Weekday: iso(7)}, want: "22:00-02:00 sun"},
		{s: Schedule{StartHour: 22, EndHour: 2, Weekday: iso(0)}, want: "22:00-02:00 sun"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}
