package usecase

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
)

const (
	StrategyCurrentSeasonWeekly = "current-season-weekly"
	StrategyPriorSeasonSchedule = "prior-season-schedule"
)

type statsOutcome string

const (
	statsFound    statsOutcome = "found"
	statsEmpty    statsOutcome = "empty"
	statsNotFound statsOutcome = "not_found"
)

// statsStrategy produces team rows for the season derived from the current year.
type statsStrategy struct {
	name  string
	fetch func(ctx context.Context, currentYear int) ([]teamstats.GameRow, error)
}

type TeamStatsConfig struct {
	// MaxWorkers bounds concurrent dataset downloads.
	MaxWorkers int
	// Now supplies the clock used to pick the current season.
	Now func() time.Time
}

// TeamStatsService builds the team stats table from nflverse datasets,
// walking an ordered list of season strategies until one yields rows.
type TeamStatsService struct {
	source     StatsSource
	strategies []statsStrategy
	maxWorkers int
	logger     *logging.Logger
	metrics    MetricsRecorder
	now        func() time.Time
}

func NewTeamStatsService(source StatsSource, cfg TeamStatsConfig, logger *logging.Logger, metrics MetricsRecorder) *TeamStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.MaxWorkers
	if workers < 2 {
		workers = 2
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &TeamStatsService{
		source:     source,
		maxWorkers: workers,
		logger:     logger,
		metrics:    metricsOrNop(metrics),
		now:        now,
	}
	s.strategies = []statsStrategy{
		{
			name: StrategyCurrentSeasonWeekly,
			fetch: func(ctx context.Context, year int) ([]teamstats.GameRow, error) {
				return s.source.FetchWeeklyTeamRows(ctx, year)
			},
		},
		{
			name: StrategyPriorSeasonSchedule,
			fetch: func(ctx context.Context, year int) ([]teamstats.GameRow, error) {
				games, err := s.source.FetchSchedule(ctx, year-1)
				if err != nil {
					return nil, err
				}
				return ScheduleRows(games), nil
			},
		},
	}
	return s
}

func (s *TeamStatsService) FetchTeamStats(ctx context.Context) (teamstats.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStatsService.FetchTeamStats")
	defer span.End()

	if s.source == nil {
		return nil, crerr.Wrap(ErrMisconfigured, "team stats source is not configured")
	}

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return nil, crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	year := s.now().UTC().Year()
	var (
		workers  sync.WaitGroup
		names    map[string]string
		namesErr error
		rows     []teamstats.GameRow
		strategy string
		rowsErr  error
	)

	workers.Add(2)
	if err := pool.Submit(func() {
		defer workers.Done()
		names, namesErr = s.source.FetchTeamDirectory(ctx)
	}); err != nil {
		workers.Add(-2)
		return nil, crerr.Wrap(err, "submit team directory task")
	}
	if err := pool.Submit(func() {
		defer workers.Done()
		rows, strategy, rowsErr = s.runStrategies(ctx, year)
	}); err != nil {
		workers.Done()
		workers.Wait()
		return nil, crerr.Wrap(err, "submit team rows task")
	}
	workers.Wait()

	if rowsErr != nil {
		return nil, markUnavailable(rowsErr, "fetch team rows")
	}
	if namesErr != nil {
		return nil, markUnavailable(namesErr, "fetch team directory")
	}

	table := teamstats.Aggregate(rows, names)
	if unknown := unknownTeams(rows, names); unknown > 0 {
		s.metrics.AddDroppedRecords("nflverse", "unknown_team", unknown)
		s.logger.DebugContext(ctx, "dropped teams missing from directory", "count", unknown)
	}
	if len(table) == 0 {
		return nil, crerr.Wrapf(ErrDependencyUnavailable, "no team stats could be mapped from %d rows", len(rows))
	}

	s.logger.DebugContext(ctx, "team stats aggregated",
		"strategy", strategy,
		"rows", len(rows),
		"teams", len(table),
	)
	return table, nil
}

// runStrategies returns the rows of the first strategy that finds any.
// Only empty and not-found outcomes move on to the next strategy.
func (s *TeamStatsService) runStrategies(ctx context.Context, currentYear int) ([]teamstats.GameRow, string, error) {
	for _, st := range s.strategies {
		rows, outcome, err := s.runStrategy(ctx, st, currentYear)
		if err != nil {
			return nil, st.name, err
		}
		if outcome == statsFound {
			return rows, st.name, nil
		}
		s.logger.InfoContext(ctx, "team stats strategy yielded no rows, trying next",
			"strategy", st.name,
			"outcome", string(outcome),
			"year", currentYear,
		)
	}
	return nil, "", crerr.Wrapf(ErrDependencyUnavailable, "no team stats available for %d or %d", currentYear, currentYear-1)
}

func (s *TeamStatsService) runStrategy(ctx context.Context, st statsStrategy, currentYear int) ([]teamstats.GameRow, statsOutcome, error) {
	rows, err := st.fetch(ctx, currentYear)
	switch {
	case crerr.Is(err, ErrUpstreamNotFound):
		return nil, statsNotFound, nil
	case err != nil:
		return nil, "", crerr.Wrapf(err, "strategy %s", st.name)
	case len(rows) == 0:
		return nil, statsEmpty, nil
	default:
		return rows, statsFound, nil
	}
}

func markUnavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	if crerr.Is(err, ErrDependencyUnavailable) || crerr.Is(err, ErrMisconfigured) {
		return crerr.Wrap(err, msg)
	}
	return crerr.Mark(crerr.Wrap(err, msg), ErrDependencyUnavailable)
}

func unknownTeams(rows []teamstats.GameRow, names map[string]string) int {
	seen := make(map[string]struct{}, 4)
	for _, row := range rows {
		if _, ok := names[row.Team]; ok {
			continue
		}
		seen[row.Team] = struct{}{}
	}
	return len(seen)
}
