package ranking

import (
	"docdot_backend/internal/model"
	"time"
)

// WeekStart returns Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of t's month at 00:00 UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// RollWindows zeroes weekly and monthly XP that belong to an earlier period than
// now and moves the period starts forward. It reports whether s changed.
func RollWindows(s *model.UserStat, now time.Time) bool {
	changed := false
	if ws := WeekStart(now); s.WeekStart.Before(ws) {
		s.WeeklyXP = 0
		s.WeekStart = ws
		changed = true
	}
	if ms := MonthStart(now); s.MonthStart.Before(ms) {
		s.MonthlyXP = 0
		s.MonthStart = ms
		changed = true
	}
	return changed
}
