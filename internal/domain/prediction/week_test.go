package prediction

import (
	"testing"
	"time"
)

func TestWeekContaining(t *testing.T) {
	t.Parallel()

	// 2025-09-04 is a Thursday.
	thursday := time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "thursday midnight", now: thursday, want: thursday},
		{name: "thursday evening", now: thursday.Add(20 * time.Hour), want: thursday},
		{name: "sunday", now: time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC), want: thursday},
		{name: "monday night", now: time.Date(2025, 9, 8, 23, 59, 0, 0, time.UTC), want: thursday},
		{name: "wednesday", now: time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC), want: thursday},
		{name: "next thursday", now: time.Date(2025, 9, 11, 0, 0, 1, 0, time.UTC), want: thursday.AddDate(0, 0, 7)},
		{name: "non utc input", now: time.Date(2025, 9, 3, 22, 0, 0, 0, time.FixedZone("EDT", -4*3600)), want: thursday},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			week := WeekContaining(tc.now)
			if !week.Start.Equal(tc.want) {
				t.Fatalf("start: got=%s want=%s", week.Start, tc.want)
			}
			if !week.End.Equal(tc.want.AddDate(0, 0, 7)) {
				t.Fatalf("end: got=%s want=%s", week.End, tc.want.AddDate(0, 0, 7))
			}
		})
	}
}

func TestWeek_ContainsIsClosedOpen(t *testing.T) {
	t.Parallel()

	week := WeekContaining(time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC))
	if !week.Contains(week.Start) {
		t.Fatalf("expected start of week to be included")
	}
	if week.Contains(week.End) {
		t.Fatalf("expected end of week to be excluded")
	}
	if !week.Contains(week.End.Add(-time.Nanosecond)) {
		t.Fatalf("expected last instant before end to be included")
	}
	if week.Contains(week.Start.Add(-time.Nanosecond)) {
		t.Fatalf("expected instant before start to be excluded")
	}
}
