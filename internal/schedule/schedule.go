package schedule

import (
	"fmt"
	"math"
	"time"
)

// Schedule is one recurring weekly block window. JSON tags follow the
// on-disk config keys used by earlier releases, so existing config files
// keep working unchanged.
type Schedule struct {
	StartHour   int `json:"start-hour"`
	StartMinute int `json:"start-minute"`
	EndHour     int `json:"end-hour"`
	EndMinute   int `json:"end-minute"`

	// Weekday is an ISO weekday (1=Monday .. 7=Sunday); nil means the
	// window applies every day. 0 is accepted and equivalent to 7.
	Weekday *int `json:"weekday,omitempty"`

	// BlockAsWhitelist is passed through to SelfControl's blocklist
	// untouched; the scheduling arithmetic never looks at it.
	BlockAsWhitelist bool `json:"block-as-whitelist,omitempty"`
}

// Trigger is one weekly calendar occurrence of a window's start time, in
// the shape launchd's StartCalendarInterval consumes.
type Trigger struct {
	Weekday int
	Hour    int
	Minute  int
}

// Weekdays returns the ISO weekdays the schedule applies to, ascending.
func (s Schedule) Weekdays() []int {
	if s.Weekday != nil {
		return []int{*s.Weekday}
	}
	days := make([]int, 7)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

// IsActive reports whether now falls inside the window. Start and end are
// anchored to now's calendar day; when the end reads earlier than the
// start the window continues past midnight, and now may instead fall into
// the tail that spills over from the previous applicable weekday.
// Both window bounds are inclusive.
func (s Schedule) IsActive(now time.Time) bool {
	start, end := s.bounds(now)
	d := end.Sub(start)

	for _, w := range s.Weekdays() {
		switch isoWeekday(now)%7 - w%7 {
		case 0:
			// The schedule's weekday is today.
			if d >= 0 {
				if !now.Before(start) && !now.After(end) {
					return true
				}
			} else if !now.Before(start) {
				return true
			}
		case 1, -6:
			// The schedule's weekday was yesterday; only the spill-over
			// tail of a midnight-crossing window can still be open.
			if d < 0 && !now.After(end) {
				return true
			}
		}
	}
	return false
}

// EndOfSchedule formats the end of the window as an ISO 8601 timestamp
// carrying the local UTC offset, e.g. "2024-01-05T17:30:00+0100". The end
// is anchored to now's calendar day, also for windows that cross midnight.
// Fractional offsets keep the historical hundredth-hour encoding:
// UTC+10:30 renders as "+1050", not "+1030".
func (s Schedule) EndOfSchedule(now time.Time) string {
	_, end := s.bounds(now)

	_, secs := now.Zone()
	hours := float64(secs) / 3600
	sign := "+"
	if hours < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s%04d", end.Format("2006-01-02T15:04:05"), sign, int(math.Abs(hours*100)))
}

// Triggers expands the schedule into one trigger per applicable weekday,
// ascending, each carrying the window's start time. Duplicate triggers
// across schedules are not this package's concern; the installer hands
// them to launchd as-is.
func (s Schedule) Triggers() []Trigger {
	days := s.Weekdays()
	trig := make([]Trigger, 0, len(days))
	for _, w := range days {
		trig = append(trig, Trigger{Weekday: w, Hour: s.StartHour, Minute: s.StartMinute})
	}
	return trig
}

// String renders a compact label for logs and the journal,
// e.g. "22:00-02:00 fri" or "09:00-17:30 daily".
func (s Schedule) String() string {
	day := "daily"
	if s.Weekday != nil {
		day = weekdayNames[*s.Weekday%7]
	}
	return fmt.Sprintf("%02d:%02d-%02d:%02d %s", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute, day)
}

// FirstActive returns the first schedule in order that is active at now.
// Input order is the tie-break when windows overlap. ok is false when no
// schedule matches, which is a normal outcome, not a fault.
func FirstActive(schedules []Schedule, now time.Time) (active Schedule, ok bool) {
	for _, s := range schedules {
		if s.IsActive(now) {
			return s, true
		}
	}
	return Schedule{}, false
}

// AnyActive reports whether at least one schedule is active at now.
func AnyActive(schedules []Schedule, now time.Time) bool {
	_, ok := FirstActive(schedules, now)
	return ok
}

func (s Schedule) bounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, s.StartHour, s.StartMinute, 0, 0, now.Location())
	end = time.Date(y, m, d, s.EndHour, s.EndMinute, 0, 0, now.Location())
	return start, end
}

// isoWeekday returns the ISO 8601 weekday number for t (1=Monday .. 7=Sunday).
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

var weekdayNames = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}
