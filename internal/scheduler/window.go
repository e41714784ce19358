package scheduler

import (
	"fmt"
	"time"
)

// Window is the rolling dispatch interval agents are compared against. It is
// computed relative to "now minus the window length", not aligned to clock
// boundaries, so the tick cadence must equal the window length to avoid gaps
// or double coverage between consecutive ticks.
type Window struct {
	StartHour int
	EndHour   int
}

// CurrentWindow returns the window ending at now.
func CurrentWindow(now time.Time, length time.Duration) Window {
	start := now.Add(-length)
	return Window{StartHour: start.Hour(), EndHour: now.Hour()}
}

// Contains reports whether the given hour falls inside the window. The start
// boundary is exclusive: an agent scheduled exactly at the opening hour was
// already eligible in the previous window and must not retrigger. Windows
// where start >= end wrap past midnight.
func (w Window) Contains(hour int) bool {
	if w.StartHour < w.EndHour {
		return hour > w.StartHour && hour <= w.EndHour
	}
	return hour > w.StartHour || hour <= w.EndHour
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.StartHour, w.EndHour)
}
