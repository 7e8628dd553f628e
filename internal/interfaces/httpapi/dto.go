package httpapi

import (
	"time"

	"github.com/riskibarqy/nfl-predictions/internal/domain/prediction"
)

type predictionDTO struct {
	ID                string  `json:"id"`
	GameTime          string  `json:"gameTime"`
	AwayTeam          string  `json:"awayTeam"`
	HomeTeam          string  `json:"homeTeam"`
	Favorite          string  `json:"favorite"`
	Line              float64 `json:"line"`
	Bookmaker         string  `json:"bookmaker"`
	CoverProbability  float64 `json:"cover_probability"`
	FavoriteATSRecord string  `json:"favorite_ats_record"`
}

type healthDTO struct {
	Status string         `json:"status"`
	Cache  cacheHealthDTO `json:"cache"`
}

type cacheHealthDTO struct {
	Warm       bool    `json:"warm"`
	ComputedAt *string `json:"computed_at"`
}

// toPredictionDTOs always returns a non-nil slice so an empty week encodes as [].
func toPredictionDTOs(items []prediction.Prediction) []predictionDTO {
	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionDTO{
			ID:                item.ID,
			GameTime:          item.GameTimeUTC.UTC().Format(time.RFC3339),
			AwayTeam:          item.AwayTeam,
			HomeTeam:          item.HomeTeam,
			Favorite:          item.FavoriteTeam,
			Line:              item.SpreadLine,
			Bookmaker:         item.Bookmaker,
			CoverProbability:  item.CoverProbabilityPercent,
			FavoriteATSRecord: item.FavoriteATSRecord,
		})
	}
	return out
}
