package prediction

import "time"

const weekLength = 7 * 24 * time.Hour

// Week is the closed-open interval [Start, End) of one NFL game week.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekContaining returns the week starting on the most recent Thursday at
// 00:00 UTC on or before now.
func WeekContaining(now time.Time) Week {
	now = now.UTC()
	mondayBased := (int(now.Weekday()) + 6) % 7
	daysSinceThursday := ((mondayBased-3)%7 + 7) % 7

	day := now.AddDate(0, 0, -daysSinceThursday)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	return Week{Start: start, End: start.Add(weekLength)}
}

func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
