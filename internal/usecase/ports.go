package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"
)

// StatsSource is the raw nflverse-style dataset reader behind TeamStatsService.
type StatsSource interface {
	// FetchWeeklyTeamRows returns one row per team per game played in season.
	// A dataset that is not published yet yields ErrUpstreamNotFound.
	FetchWeeklyTeamRows(ctx context.Context, season int) ([]teamstats.GameRow, error)
	// FetchSchedule returns every scheduled game of season, finished or not.
	FetchSchedule(ctx context.Context, season int) ([]ScheduledGame, error)
	// FetchTeamDirectory maps team abbreviations to display names.
	FetchTeamDirectory(ctx context.Context) (map[string]string, error)
}

type StatsProvider interface {
	FetchTeamStats(ctx context.Context) (teamstats.Table, error)
}

type OddsProvider interface {
	FetchOdds(ctx context.Context) ([]ExternalOddsGame, error)
}

// ScheduledGame is one schedule row. Scores are nil until the game is final.
// Result and SpreadLine are quoted from the home team's side.
type ScheduledGame struct {
	GameID     string
	Season     int
	Week       int
	HomeTeam   string
	AwayTeam   string
	HomeScore  *float64
	AwayScore  *float64
	Result     float64
	SpreadLine float64
}

func (g ScheduledGame) Completed() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// ExternalOddsGame is a single event as returned by the odds provider.
type ExternalOddsGame struct {
	ID           string              `json:"id" validate:"required"`
	SportKey     string              `json:"sport_key"`
	CommenceTime string              `json:"commence_time" validate:"required"`
	HomeTeam     string              `json:"home_team" validate:"required"`
	AwayTeam     string              `json:"away_team" validate:"required,nefield=HomeTeam"`
	Bookmakers   []ExternalBookmaker `json:"bookmakers"`
}

type ExternalBookmaker struct {
	Key     string           `json:"key"`
	Title   string           `json:"title"`
	Markets []ExternalMarket `json:"markets"`
}

type ExternalMarket struct {
	Key      string            `json:"key"`
	Outcomes []ExternalOutcome `json:"outcomes"`
}

type ExternalOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// MetricsRecorder receives pipeline measurements. A nil recorder is replaced by NopMetrics.
type MetricsRecorder interface {
	ObserveUpstreamFetch(source, outcome string, elapsed time.Duration)
	ObserveCacheLookup(hit bool)
	AddDroppedRecords(source, reason string, n int)
}

type NopMetrics struct{}

func (NopMetrics) ObserveUpstreamFetch(string, string, time.Duration) {}
func (NopMetrics) ObserveCacheLookup(bool)                            {}
func (NopMetrics) AddDroppedRecords(string, string, int)              {}

func metricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return NopMetrics{}
	}
	return m
}
