package scheduler

import (
	"strconv"
	"strings"
)

// TimeOfDay is a parsed schedule_time value.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseScheduleTime decodes a stored schedule_time: "HH:mm", or a legacy bare
// hour number. Nil, empty, or unparseable input decodes to midnight — whether
// a missing schedule_time is a skip condition is the caller's call, not the
// parser's. Never panics.
func ParseScheduleTime(raw *string) TimeOfDay {
	if raw == nil {
		return TimeOfDay{}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return TimeOfDay{}
	}

	hourPart := s
	minutePart := ""
	if idx := strings.Index(s, ":"); idx >= 0 {
		hourPart = s[:idx]
		minutePart = s[idx+1:]
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}
	}

	minute := 0
	if minutePart != "" {
		m, err := strconv.Atoi(strings.TrimSpace(minutePart))
		if err == nil && m >= 0 && m <= 59 {
			minute = m
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}
}

// ParseDayTime decodes a stored day_time: a bare number, or a prefixed form
// like "W-3" (weekday) or "M-15" (day of month). When the value contains a
// separator, everything after the first separator is the numeric day. Returns
// nil when no number can be extracted; the caller must treat nil as an
// invalid-configuration skip. Never panics.
func ParseDayTime(raw *string) *int {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}

	if idx := strings.Index(s, "-"); idx >= 0 {
		s = s[idx+1:]
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
