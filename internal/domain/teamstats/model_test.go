package teamstats

import "testing"

func TestTeamStats_PowerRating(t *testing.T) {
	t.Parallel()

	s := TeamStats{PointsPerGame: 27.5, OpponentPointsPerGame: 19.25}
	if got := s.PowerRating(); got != 27.5-19.25 {
		t.Fatalf("unexpected power rating: %v", got)
	}
}

func TestClassifyATS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		result float64
		spread float64
		want   ATSOutcome
	}{
		{result: 7, spread: -3, want: ATSWin},
		{result: 3, spread: -3, want: ATSPush},
		{result: 1, spread: -3, want: ATSLoss},
		{result: -2, spread: 3, want: ATSWin},
		{result: -3, spread: 3, want: ATSPush},
		{result: -10, spread: 6.5, want: ATSLoss},
	}

	for _, tc := range tests {
		if got := ClassifyATS(tc.result, tc.spread); got != tc.want {
			t.Fatalf("ClassifyATS(%v, %v)=%s want %s", tc.result, tc.spread, got, tc.want)
		}
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	rows := []GameRow{
		{Team: "KC", PointsFor: 30, PointsAgainst: 20, Result: 10, SpreadLine: -3},
		{Team: "KC", PointsFor: 20, PointsAgainst: 24, Result: -4, SpreadLine: -2},
		{Team: "KC", PointsFor: 17, PointsAgainst: 14, Result: 3, SpreadLine: -3},
		{Team: "BUF", PointsFor: 21, PointsAgainst: 21, Result: 0, SpreadLine: 1},
		{Team: "XXX", PointsFor: 99, PointsAgainst: 0, Result: 99, SpreadLine: 0},
	}
	names := map[string]string{
		"KC":  "Kansas City Chiefs",
		"BUF": "Buffalo Bills",
	}

	got := Aggregate(rows, names)
	if len(got) != 2 {
		t.Fatalf("expected 2 teams, got %d: %+v", len(got), got)
	}
	if _, ok := got["XXX"]; ok {
		t.Fatalf("expected team missing from directory to be dropped")
	}

	kc := got["Kansas City Chiefs"]
	if kc.PointsPerGame != 67.0/3 || kc.OpponentPointsPerGame != 58.0/3 {
		t.Fatalf("unexpected KC averages: %+v", kc)
	}
	if kc.ATSWins != 1 || kc.ATSLosses != 1 || kc.ATSPushes != 1 {
		t.Fatalf("unexpected KC ATS counts: %+v", kc)
	}
	if kc.ATSRecord() != "1-1-1" {
		t.Fatalf("unexpected KC record: %s", kc.ATSRecord())
	}

	buf := got["Buffalo Bills"]
	if buf.ATSWins != 1 || buf.ATSRecord() != "1-0" {
		t.Fatalf("unexpected BUF stats: %+v", buf)
	}
}
