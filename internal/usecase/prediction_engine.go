package usecase

import (
	"sort"
	"time"

	"github.com/riskibarqy/nfl-predictions/internal/domain/game"
	"github.com/riskibarqy/nfl-predictions/internal/domain/prediction"
	"github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"
)

type PredictionEngine struct {
	Model prediction.Model
}

// PredictWeek keeps games inside [start, end) of the current week, scores
// each one and orders them by kickoff. Ties keep their input order.
func (e PredictionEngine) PredictWeek(games []game.Game, stats teamstats.Table, now time.Time) []prediction.Prediction {
	week := prediction.WeekContaining(now)

	out := make([]prediction.Prediction, 0, len(games))
	for _, g := range games {
		if !week.Contains(g.GameTimeUTC) {
			continue
		}
		out = append(out, e.Model.Predict(g, stats))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GameTimeUTC.Before(out[j].GameTimeUTC)
	})
	return out
}
