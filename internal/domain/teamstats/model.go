package teamstats

import "strconv"

// ATSOutcome is a single game's result against the spread.
type ATSOutcome string

const (
	ATSWin  ATSOutcome = "win"
	ATSLoss ATSOutcome = "loss"
	ATSPush ATSOutcome = "push"
)

// TeamStats is the season-to-date summary for one team.
type TeamStats struct {
	PointsPerGame         float64
	OpponentPointsPerGame float64
	ATSWins               int
	ATSLosses             int
	ATSPushes             int
}

// Table maps team display names to their stats.
type Table map[string]TeamStats

// PowerRating is the team's average scoring margin.
func (s TeamStats) PowerRating() float64 {
	return s.PointsPerGame - s.OpponentPointsPerGame
}

// ATSRecord formats the record as "W-L", or "W-L-P" when there are pushes.
func (s TeamStats) ATSRecord() string {
	out := strconv.Itoa(s.ATSWins) + "-" + strconv.Itoa(s.ATSLosses)
	if s.ATSPushes > 0 {
		out += "-" + strconv.Itoa(s.ATSPushes)
	}
	return out
}

// GameRow is one game seen from one team's perspective. Result is the team's
// final margin and SpreadLine is quoted relative to the same team.
type GameRow struct {
	Team          string
	PointsFor     float64
	PointsAgainst float64
	Result        float64
	SpreadLine    float64
}

func ClassifyATS(result, spreadLine float64) ATSOutcome {
	covered := result + spreadLine
	switch {
	case covered > 0:
		return ATSWin
	case covered < 0:
		return ATSLoss
	default:
		return ATSPush
	}
}

// Aggregate groups rows by team abbreviation and renames them through names.
// Abbreviations missing from names are dropped.
func Aggregate(rows []GameRow, names map[string]string) Table {
	type accumulator struct {
		games         int
		pointsFor     float64
		pointsAgainst float64
		wins          int
		losses        int
		pushes        int
	}

	byAbbr := make(map[string]*accumulator, 32)
	for _, row := range rows {
		acc, ok := byAbbr[row.Team]
		if !ok {
			acc = &accumulator{}
			byAbbr[row.Team] = acc
		}
		acc.games++
		acc.pointsFor += row.PointsFor
		acc.pointsAgainst += row.PointsAgainst
		switch ClassifyATS(row.Result, row.SpreadLine) {
		case ATSWin:
			acc.wins++
		case ATSLoss:
			acc.losses++
		default:
			acc.pushes++
		}
	}

	out := make(Table, len(byAbbr))
	for abbr, acc := range byAbbr {
		name, ok := names[abbr]
		if !ok || name == "" || acc.games == 0 {
			continue
		}
		out[name] = TeamStats{
			PointsPerGame:         acc.pointsFor / float64(acc.games),
			OpponentPointsPerGame: acc.pointsAgainst / float64(acc.games),
			ATSWins:               acc.wins,
			ATSLosses:             acc.losses,
			ATSPushes:             acc.pushes,
		}
	}

	return out
}
