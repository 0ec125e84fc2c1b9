// Package schedule implements the weekly block-window arithmetic at the
// heart of auto-selfcontrol.
//
// A Schedule describes one recurring window: a start and an end time of day
// plus an optional ISO weekday (nil meaning every day). A window whose end
// time reads earlier than its start crosses midnight into the following
// day; activation checks handle that by also inspecting the previous
// weekday's window tail. All weekday comparisons go through modulo-7
// arithmetic, so the values 0 and 7 (both Sunday) behave identically.
//
// Everything in this package is a pure function of its inputs. Callers
// read the clock once per evaluation pass and reuse that instant across
// the whole scan, so overlapping schedules are judged against a single
// consistent "now".
package schedule
