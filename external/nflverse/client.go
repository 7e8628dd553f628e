package nflverse

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-predictions/internal/domain/teamstats"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/riskibarqy/nfl-predictions/internal/platform/resilience"
	"github.com/riskibarqy/nfl-predictions/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultWeeklyURL   = "https://raw.githubusercontent.com/nflverse/nfldata/master/data/games.csv"
	DefaultScheduleURL = "https://raw.githubusercontent.com/nflverse/nfldata/master/data/games.csv"
	DefaultTeamsURL    = "https://raw.githubusercontent.com/nflverse/nflfastR-data/master/teams_colors_logos.csv"

	SeasonPlaceholder = "{season}"
	maxBodyBytes      = 32 << 20
	metricsSource     = "nflverse"
)

var errNflverseTransient = crerr.New("nflverse transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	WeeklyURL      string
	ScheduleURL    string
	TeamsURL       string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	Metrics        usecase.MetricsRecorder
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads nflverse CSV datasets. It implements usecase.StatsSource.
type Client struct {
	httpClient  *http.Client
	weeklyURL   string
	scheduleURL string
	teamsURL    string
	retry       resilience.RetryPolicy
	logger      *logging.Logger
	metrics     usecase.MetricsRecorder
	breaker     *resilience.CircuitBreaker
	flight      singleflight.Group
}

var _ usecase.StatsSource = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = usecase.NopMetrics{}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient:  httpClient,
		weeklyURL:   firstNonEmpty(cfg.WeeklyURL, DefaultWeeklyURL),
		scheduleURL: firstNonEmpty(cfg.ScheduleURL, DefaultScheduleURL),
		teamsURL:    firstNonEmpty(cfg.TeamsURL, DefaultTeamsURL),
		retry:       resilience.RetryPolicy{MaxRetries: maxInt(cfg.MaxRetries, 0), Backoff: cfg.RetryBackoff},
		logger:      logger.Named("nflverse"),
		metrics:     metrics,
		breaker:     resilience.NewCircuitBreaker(metricsSource, cfg.CircuitBreaker),
	}
}

// Breaker exposes the client's circuit breaker so callers can observe its state.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// FetchWeeklyTeamRows accepts either a per-team layout (team, points_for,
// points_against, result, spread_line) or a schedule layout, which is
// reshaped into mirrored team rows.
func (c *Client) FetchWeeklyTeamRows(ctx context.Context, season int) ([]teamstats.GameRow, error) {
	raw, err := c.fetchCSV(ctx, "weekly", expandSeason(c.weeklyURL, season))
	if err != nil {
		return nil, err
	}

	table, err := readTable(raw)
	if err != nil {
		return nil, err
	}
	if table.has("team") {
		rows, dropped := parseTeamRows(table, season)
		c.recordDropped(ctx, "weekly", dropped)
		return rows, nil
	}
	if table.has("home_team", "away_team") {
		games, dropped := parseSchedule(table, season)
		c.recordDropped(ctx, "weekly", dropped)
		return usecase.ScheduleRows(games), nil
	}
	return nil, crerr.Newf("weekly dataset has unknown layout, columns=%v", table.columns())
}

func (c *Client) FetchSchedule(ctx context.Context, season int) ([]usecase.ScheduledGame, error) {
	raw, err := c.fetchCSV(ctx, "schedule", expandSeason(c.scheduleURL, season))
	if err != nil {
		return nil, err
	}

	table, err := readTable(raw)
	if err != nil {
		return nil, err
	}
	if !table.has("home_team", "away_team") {
		return nil, crerr.Newf("schedule dataset is missing team columns, columns=%v", table.columns())
	}

	games, dropped := parseSchedule(table, season)
	c.recordDropped(ctx, "schedule", dropped)
	return games, nil
}

func (c *Client) FetchTeamDirectory(ctx context.Context) (map[string]string, error) {
	raw, err := c.fetchCSV(ctx, "teams", c.teamsURL)
	if err != nil {
		return nil, err
	}

	table, err := readTable(raw)
	if err != nil {
		return nil, err
	}
	if !table.has("team_abbr", "team_name") {
		return nil, crerr.Newf("team directory is missing columns, columns=%v", table.columns())
	}

	out := make(map[string]string, len(table.rows))
	for _, row := range table.rows {
		abbr := table.get(row, "team_abbr")
		name := table.get(row, "team_name")
		if abbr == "" || name == "" {
			continue
		}
		out[abbr] = name
	}
	return out, nil
}

func (c *Client) recordDropped(ctx context.Context, dataset string, dropped int) {
	if dropped <= 0 {
		return
	}
	c.metrics.AddDroppedRecords(metricsSource, dataset+"_malformed_row", dropped)
	c.logger.DebugContext(ctx, "skipped malformed rows", "dataset", dataset, "count", dropped)
}

// fetchCSV downloads url once per concurrent caller set, retrying transient
// failures behind the circuit breaker. A 404 maps to usecase.ErrUpstreamNotFound.
func (c *Client) fetchCSV(ctx context.Context, dataset, url string) ([]byte, error) {
	out, err, _ := c.flight.Do(url, func() (any, error) {
		start := time.Now()
		var raw []byte
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, url)
			return reqErr
		}, isCircuitFailure)
		c.metrics.ObserveUpstreamFetch(metricsSource+"_"+dataset, outcomeLabel(err), time.Since(start))

		switch {
		case crerr.Is(err, resilience.ErrCircuitOpen):
			c.logger.WarnContext(ctx, "nflverse circuit breaker rejected request", "dataset", dataset, "state", c.breaker.State())
			return nil, crerr.Wrap(usecase.ErrDependencyUnavailable, "nflverse is temporarily unavailable")
		case err != nil:
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, c.retry, isRetryable, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "text/csv")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return crerr.Mark(crerr.Wrap(err, "send request"), errNflverseTransient)
		}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()

		switch {
		case readErr != nil:
			return crerr.Mark(crerr.Wrap(readErr, "read response body"), errNflverseTransient)
		case resp.StatusCode == http.StatusNotFound:
			return crerr.Wrapf(usecase.ErrUpstreamNotFound, "dataset %s", url)
		case isRetryableStatus(resp.StatusCode):
			return fmt.Errorf("%w: status=%d body=%s", errNflverseTransient, resp.StatusCode, abbreviateBody(raw))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		}

		if attempt > 0 {
			c.logger.InfoContext(ctx, "nflverse request succeeded after retry", "url", url, "attempt", attempt+1)
		}
		body = raw
		return nil
	})
	if err != nil {
		if !crerr.Is(err, usecase.ErrUpstreamNotFound) {
			c.logger.WarnContext(ctx, "nflverse request failed", "url", url, "error", err)
		}
		return nil, err
	}
	return body, nil
}

// csvTable is a parsed CSV with a header index.
type csvTable struct {
	index map[string]int
	rows  [][]string
}

func readTable(raw []byte) (csvTable, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	records, err := reader.ReadAll()
	if err != nil {
		return csvTable{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return csvTable{index: map[string]int{}}, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	return csvTable{index: index, rows: records[1:]}, nil
}

func (t csvTable) has(columns ...string) bool {
	for _, col := range columns {
		if _, ok := t.index[col]; !ok {
			return false
		}
	}
	return true
}

func (t csvTable) columns() []string {
	out := make([]string, len(t.index))
	for name, i := range t.index {
		if i < len(out) {
			out[i] = name
		}
	}
	return out
}

func (t csvTable) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	value := strings.TrimSpace(row[i])
	if value == "NA" {
		return ""
	}
	return value
}

func (t csvTable) float(row []string, column string) (float64, bool) {
	value := t.get(row, column)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseTeamRows keeps rows of season when the dataset carries a season column.
func parseTeamRows(t csvTable, season int) ([]teamstats.GameRow, int) {
	filterSeason := t.has("season")
	out := make([]teamstats.GameRow, 0, len(t.rows))
	dropped := 0
	for _, row := range t.rows {
		if filterSeason && t.get(row, "season") != strconv.Itoa(season) {
			continue
		}

		team := t.get(row, "team")
		pointsFor, okFor := t.float(row, "points_for")
		pointsAgainst, okAgainst := t.float(row, "points_against")
		result, okResult := t.float(row, "result")
		spread, okSpread := t.float(row, "spread_line")
		if team == "" || !okFor || !okAgainst || !okResult || !okSpread {
			dropped++
			continue
		}
		out = append(out, teamstats.GameRow{
			Team:          team,
			PointsFor:     pointsFor,
			PointsAgainst: pointsAgainst,
			Result:        result,
			SpreadLine:    spread,
		})
	}
	return out, dropped
}

// parseSchedule returns the games of season. Unplayed games are kept with nil
// scores; completed games missing result or spread_line are dropped.
func parseSchedule(t csvTable, season int) ([]usecase.ScheduledGame, int) {
	filterSeason := t.has("season")
	out := make([]usecase.ScheduledGame, 0, 300)
	dropped := 0
	for _, row := range t.rows {
		if filterSeason && t.get(row, "season") != strconv.Itoa(season) {
			continue
		}

		g := usecase.ScheduledGame{
			GameID:   t.get(row, "game_id"),
			Season:   season,
			HomeTeam: t.get(row, "home_team"),
			AwayTeam: t.get(row, "away_team"),
		}
		if g.HomeTeam == "" || g.AwayTeam == "" {
			dropped++
			continue
		}
		if week, err := strconv.Atoi(t.get(row, "week")); err == nil {
			g.Week = week
		}

		homeScore, okHome := t.float(row, "home_score")
		awayScore, okAway := t.float(row, "away_score")
		if okHome && okAway {
			result, okResult := t.float(row, "result")
			if !okResult {
				result = homeScore - awayScore
			}
			spread, okSpread := t.float(row, "spread_line")
			if !okSpread {
				dropped++
				continue
			}
			g.HomeScore = &homeScore
			g.AwayScore = &awayScore
			g.Result = result
			g.SpreadLine = spread
		}
		out = append(out, g)
	}
	return out, dropped
}

func expandSeason(url string, season int) string {
	return strings.ReplaceAll(url, SeasonPlaceholder, strconv.Itoa(season))
}

func isCircuitFailure(err error) bool {
	return err != nil && !crerr.Is(err, usecase.ErrUpstreamNotFound) && !crerr.Is(err, context.Canceled)
}

func isRetryable(err error) bool {
	return crerr.Is(err, errNflverseTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case crerr.Is(err, usecase.ErrUpstreamNotFound):
		return "not_found"
	case crerr.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	default:
		return "failure"
	}
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
