package prediction

import (
	"math"

	"github.com/riskibarqy/nfl-predictions/internal/domain/game"
	"github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"
	"github.com/shopspring/decimal"
)

const NoRecord = "N/A"

// Prediction is a game with the model's estimate that the favorite covers.
type Prediction struct {
	game.Game
	CoverProbabilityPercent float64
	FavoriteATSRecord       string
}

// Model stores the cover-probability parameters.
type Model struct {
	HomeFieldAdvantage float64
	PointsToPercent    float64
	NeutralPercent     float64
	MinPercent         float64
	MaxPercent         float64
}

func DefaultModel() Model {
	return Model{
		HomeFieldAdvantage: 2.5,
		PointsToPercent:    2.5,
		NeutralPercent:     50,
		MinPercent:         5,
		MaxPercent:         95,
	}
}

// ActualLine returns the spread from the home team's side.
func ActualLine(g game.Game) float64 {
	if g.FavoriteIsHome() {
		return g.SpreadLine
	}
	return -g.SpreadLine
}

// CoverProbability is unrounded and clamped to [MinPercent, MaxPercent]. When
// either team has no stats, or the stats do not yield a finite value, it
// returns NeutralPercent.
func (m Model) CoverProbability(g game.Game, stats teamstats.Table) float64 {
	home, okHome := stats[g.HomeTeam]
	away, okAway := stats[g.AwayTeam]
	if !okHome || !okAway {
		return m.NeutralPercent
	}

	projectedSpread := away.PowerRating() - home.PowerRating() - m.HomeFieldAdvantage
	valueDifference := projectedSpread - ActualLine(g)
	probability := m.NeutralPercent + valueDifference*m.PointsToPercent
	if math.IsNaN(probability) {
		return m.NeutralPercent
	}

	return m.clamp(probability)
}

func (m Model) clamp(v float64) float64 {
	if v < m.MinPercent {
		return m.MinPercent
	}
	if v > m.MaxPercent {
		return m.MaxPercent
	}
	return v
}

// Predict scores a single game.
func (m Model) Predict(g game.Game, stats teamstats.Table) Prediction {
	record := NoRecord
	if favorite, ok := stats[g.FavoriteTeam]; ok {
		record = favorite.ATSRecord()
	}

	return Prediction{
		Game:                    g,
		CoverProbabilityPercent: RoundPercent(m.CoverProbability(g, stats)),
		FavoriteATSRecord:       record,
	}
}

// RoundPercent rounds half away from zero to one decimal.
func RoundPercent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
