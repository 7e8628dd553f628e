package usecase

import "github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"

// ScheduleRows reshapes completed games into two team rows each: the home row
// as quoted and an away row with result and spread negated. Unfinished games
// are skipped.
func ScheduleRows(games []ScheduledGame) []teamstats.GameRow {
	out := make([]teamstats.GameRow, 0, len(games)*2)
	for _, g := range games {
		if !g.Completed() || g.HomeTeam == "" || g.AwayTeam == "" {
			continue
		}
		out = append(out,
			teamstats.GameRow{
				Team:          g.HomeTeam,
				PointsFor:     *g.HomeScore,
				PointsAgainst: *g.AwayScore,
				Result:        g.Result,
				SpreadLine:    g.SpreadLine,
			},
			teamstats.GameRow{
				Team:          g.AwayTeam,
				PointsFor:     *g.AwayScore,
				PointsAgainst: *g.HomeScore,
				Result:        -g.Result,
				SpreadLine:    -g.SpreadLine,
			},
		)
	}
	return out
}
