package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-predictions/internal/domain/prediction"
	"github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"
	"github.com/riskibarqy/nfl-predictions/internal/platform/cache"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

type PredictionCache = cache.Freshness[[]prediction.Prediction]

// NewPredictionCache keeps predictions for ttl. refreshTimeout bounds one
// recompute across both upstreams; zero leaves it unbounded.
func NewPredictionCache(ttl, refreshTimeout time.Duration) *PredictionCache {
	return cache.NewFreshness[[]prediction.Prediction](ttl, refreshTimeout)
}

// configurable is implemented by providers that can report missing credentials
// before any network call is made.
type configurable interface {
	Configured() bool
}

type PredictionServiceDeps struct {
	Stats      StatsProvider
	Odds       OddsProvider
	Cache      *PredictionCache
	Normalizer *OddsNormalizer
	Engine     PredictionEngine
	Logger     *logging.Logger
	Metrics    MetricsRecorder
	Now        func() time.Time
}

// PredictionService serves the current week's predictions, recomputing them
// from both upstreams whenever the cached list has expired.
type PredictionService struct {
	stats      StatsProvider
	odds       OddsProvider
	cache      *PredictionCache
	normalizer *OddsNormalizer
	engine     PredictionEngine
	logger     *logging.Logger
	metrics    MetricsRecorder
	now        func() time.Time
}

func NewPredictionService(deps PredictionServiceDeps) *PredictionService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	c := deps.Cache
	if c == nil {
		c = NewPredictionCache(cache.DefaultFreshnessTTL, 0)
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = NewOddsNormalizer()
	}
	engine := deps.Engine
	if engine.Model == (prediction.Model{}) {
		engine.Model = prediction.DefaultModel()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &PredictionService{
		stats:      deps.Stats,
		odds:       deps.Odds,
		cache:      c,
		normalizer: normalizer,
		engine:     engine,
		logger:     logger,
		metrics:    metricsOrNop(deps.Metrics),
		now:        now,
	}
}

// GetCurrentPredictions returns the cached list while it is fresh, otherwise
// fetches stats and odds concurrently and rebuilds it. Any upstream failure
// fails the call; an expired list is never served.
func (s *PredictionService) GetCurrentPredictions(ctx context.Context) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetCurrentPredictions")
	defer span.End()

	now := s.now().UTC()
	out, hit, err := s.cache.GetOrCompute(ctx, now, func(ctx context.Context) ([]prediction.Prediction, error) {
		return s.compute(ctx, now)
	})
	s.metrics.ObserveCacheLookup(hit)
	if err != nil {
		s.logger.WarnContext(ctx, "prediction refresh failed", "error", err)
		return nil, err
	}

	if hit {
		s.logger.DebugContext(ctx, "returning cached data", "predictions", len(out))
	}
	return out, nil
}

// CacheSnapshot reports the cache state for health checks.
func (s *PredictionService) CacheSnapshot() cache.Snapshot {
	return s.cache.Snapshot()
}

func (s *PredictionService) compute(ctx context.Context, now time.Time) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.compute")
	defer span.End()

	s.logger.InfoContext(ctx, "fetching new data")
	if s.stats == nil || s.odds == nil {
		return nil, crerr.Wrap(ErrMisconfigured, "prediction providers are not configured")
	}
	if c, ok := s.odds.(configurable); ok && !c.Configured() {
		return nil, crerr.Wrap(ErrMisconfigured, "odds provider is not configured")
	}

	var (
		stats teamstats.Table
		raw   []ExternalOddsGame
	)

	p := pool.New().WithContext(ctx).WithFirstError().WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		start := time.Now()
		table, err := s.stats.FetchTeamStats(ctx)
		s.metrics.ObserveUpstreamFetch("team_stats", fetchOutcome(err), time.Since(start))
		if err != nil {
			return markUnavailable(err, "fetch team stats")
		}
		stats = table
		return nil
	})
	p.Go(func(ctx context.Context) error {
		start := time.Now()
		items, err := s.odds.FetchOdds(ctx)
		s.metrics.ObserveUpstreamFetch("odds", fetchOutcome(err), time.Since(start))
		if err != nil {
			return markUnavailable(err, "fetch odds")
		}
		raw = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	normalized := s.normalizer.Normalize(raw)
	for reason, n := range normalized.Dropped {
		s.metrics.AddDroppedRecords("odds", string(reason), n)
	}
	if dropped := normalized.DroppedTotal(); dropped > 0 {
		s.logger.DebugContext(ctx, "dropped odds records", "count", dropped, "reasons", normalized.Dropped)
	}

	out := s.engine.PredictWeek(normalized.Games, stats, now)
	s.logger.InfoContext(ctx, "predictions computed",
		"odds_events", len(raw),
		"games", len(normalized.Games),
		"predictions", len(out),
		"teams", len(stats),
	)
	return out, nil
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case crerr.Is(err, ErrMisconfigured):
		return "misconfigured"
	case crerr.Is(err, context.Canceled), crerr.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "failure"
	}
}
