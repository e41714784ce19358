package scheduler

import (
	"fmt"
	"time"

	"github.com/pulseboard/pulseboard/internal/model"
)

// Decision is the outcome of evaluating one agent on one tick. When Trigger is
// false, SkipReason explains why — operators must be able to diagnose any
// agent's outcome from the log alone.
type Decision struct {
	Trigger    bool
	SkipReason string
}

func skip(format string, args ...any) Decision {
	return Decision{SkipReason: fmt.Sprintf(format, args...)}
}

// Decide evaluates an agent's schedule against the current window. Pure: it
// never mutates state. The last_triggered_at update happens in the dispatcher,
// only after a confirmed successful call — a crash between deciding and
// confirming can legitimately re-trigger on the next tick.
func Decide(agent model.Agent, now time.Time, window Window) Decision {
	switch agent.Frequency {
	case model.FrequencyDaily:
		return decideDaily(agent, now, window)
	case model.FrequencyWeekly:
		return decideWeekly(agent, now, window)
	case model.FrequencyMonthly:
		return decideMonthly(agent, now, window)
	default:
		return skip("unsupported frequency %q", agent.Frequency)
	}
}

func decideDaily(agent model.Agent, now time.Time, window Window) Decision {
	if agent.ScheduleTime == nil || *agent.ScheduleTime == "" {
		return skip("Daily agent has no scheduleTime")
	}
	if agent.LastTriggeredAt != nil && sameDay(*agent.LastTriggeredAt, now) {
		return skip("already triggered today at %s", agent.LastTriggeredAt.Format("15:04"))
	}
	return decideHour(agent, window)
}

func decideWeekly(agent model.Agent, now time.Time, window Window) Decision {
	day := ParseDayTime(agent.DayTime)
	if day == nil {
		return skip("invalid dayTime %s", strOrNone(agent.DayTime))
	}
	if agent.LastTriggeredAt != nil && sameWeek(*agent.LastTriggeredAt, now) {
		return skip("already triggered this week at %s", agent.LastTriggeredAt.Format("Mon 15:04"))
	}
	if today := isoWeekday(now); today != *day {
		return skip("today is weekday %d, agent runs on weekday %d", today, *day)
	}
	return decideHour(agent, window)
}

func decideMonthly(agent model.Agent, now time.Time, window Window) Decision {
	day := ParseDayTime(agent.DayTime)
	if day == nil {
		return skip("invalid dayTime %s", strOrNone(agent.DayTime))
	}
	if agent.LastTriggeredAt != nil && sameMonth(*agent.LastTriggeredAt, now) {
		return skip("already triggered this month at %s", agent.LastTriggeredAt.Format("Jan 2 15:04"))
	}
	if today := now.Day(); today != *day {
		return skip("today is day %d of the month, agent runs on day %d", today, *day)
	}
	return decideHour(agent, window)
}

func decideHour(agent model.Agent, window Window) Decision {
	hour := ParseScheduleTime(agent.ScheduleTime).Hour
	if !window.Contains(hour) {
		return skip("scheduled hour %02d:00 not in window %s", hour, window)
	}
	return Decision{Trigger: true}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sameWeek compares ISO weeks (Monday start).
func sameWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

// isoWeekday maps time.Weekday to 1 (Monday) through 7 (Sunday), matching the
// stored W-n encoding.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func strOrNone(s *string) string {
	if s == nil {
		return "<none>"
	}
	return fmt.Sprintf("%q", *s)
}
