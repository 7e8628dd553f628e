package theoddsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/riskibarqy/nfl-predictions/internal/platform/resilience"
	"github.com/riskibarqy/nfl-predictions/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL    = "https://api.the-odds-api.com"
	DefaultSport      = "americanfootball_nfl"
	DefaultRegions    = "us"
	DefaultMarkets    = "spreads,h2h"
	DefaultOddsFormat = "american"

	maxBodyBytes  = 6 << 20
	metricsSource = "the_odds_api"
)

var apiKeyParamRegex = regexp.MustCompile(`apiKey=[^&\s"']+`)
var errOddsTransient = crerr.New("odds api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Sport          string
	Regions        string
	Markets        string
	OddsFormat     string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	Metrics        usecase.MetricsRecorder
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches live lines from The Odds API v4. It implements usecase.OddsProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sport      string
	regions    string
	markets    string
	oddsFormat string
	retry      resilience.RetryPolicy
	logger     *logging.Logger
	metrics    usecase.MetricsRecorder
	breaker    *resilience.CircuitBreaker
}

var _ usecase.OddsProvider = (*Client)(nil)

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
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		sport:      valueOr(cfg.Sport, DefaultSport),
		regions:    valueOr(cfg.Regions, DefaultRegions),
		markets:    valueOr(cfg.Markets, DefaultMarkets),
		oddsFormat: valueOr(cfg.OddsFormat, DefaultOddsFormat),
		retry:      resilience.RetryPolicy{MaxRetries: maxInt(cfg.MaxRetries, 0), Backoff: cfg.RetryBackoff},
		logger:     logger.Named("theoddsapi"),
		metrics:    metrics,
		breaker:    resilience.NewCircuitBreaker(metricsSource, cfg.CircuitBreaker),
	}
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchOdds returns every upcoming event. An empty list is a valid answer.
func (c *Client) FetchOdds(ctx context.Context) ([]usecase.ExternalOddsGame, error) {
	if !c.Configured() {
		return nil, crerr.Wrap(usecase.ErrMisconfigured, "odds api key is not configured")
	}

	start := time.Now()
	var raw []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, c.oddsURL())
		return reqErr
	}, isCircuitFailure)
	c.metrics.ObserveUpstreamFetch(metricsSource, outcomeLabel(err), time.Since(start))

	switch {
	case crerr.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "odds api circuit breaker rejected request", "state", c.breaker.State())
		return nil, crerr.Wrap(usecase.ErrDependencyUnavailable, "odds provider is temporarily unavailable")
	case err != nil:
		return nil, crerr.Mark(err, usecase.ErrDependencyUnavailable)
	}

	var events []oddsEvent
	if err := sonic.Unmarshal(raw, &events); err != nil {
		return nil, crerr.Mark(fmt.Errorf("decode odds payload: %w", err), usecase.ErrDependencyUnavailable)
	}

	out := make([]usecase.ExternalOddsGame, 0, len(events))
	for _, event := range events {
		out = append(out, event.toExternal())
	}
	return out, nil
}

func (c *Client) oddsURL() string {
	values := url.Values{}
	values.Set("apiKey", c.apiKey)
	values.Set("regions", c.regions)
	values.Set("markets", c.markets)
	values.Set("oddsFormat", c.oddsFormat)
	return c.baseURL + "/v4/sports/" + url.PathEscape(c.sport) + "/odds/?" + values.Encode()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, c.retry, isRetryable, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %s", c.sanitize(err.Error()))
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil && crerr.Is(ctx.Err(), context.Canceled) {
			return crerr.Wrap(ctx.Err(), "send request")
		}
		if err != nil {
			return fmt.Errorf("%w: send request: %s", errOddsTransient, c.sanitize(err.Error()))
		}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()

		c.logQuota(ctx, resp.Header)

		switch {
		case readErr != nil:
			if crerr.Is(ctx.Err(), context.Canceled) {
				return crerr.Wrap(ctx.Err(), "read response body")
			}
			return fmt.Errorf("%w: read response body: %v", errOddsTransient, readErr)
		case isRetryableStatus(resp.StatusCode):
			return fmt.Errorf("%w: provider status=%d body=%s", errOddsTransient, resp.StatusCode, c.sanitize(abbreviateBody(raw)))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, c.sanitize(abbreviateBody(raw)))
		}

		if attempt > 0 {
			c.logger.InfoContext(ctx, "odds api request succeeded after retry", "attempt", attempt+1)
		}
		body = raw
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "odds api request failed", "url", redactAPIURL(fullURL), "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Client) logQuota(ctx context.Context, header http.Header) {
	remaining := header.Get("x-requests-remaining")
	if remaining == "" {
		return
	}
	c.logger.DebugContext(ctx, "odds api quota",
		"requests_remaining", remaining,
		"requests_used", header.Get("x-requests-used"),
	)
}

func (c *Client) sanitize(value string) string {
	return sanitizeSensitiveText(value, c.apiKey)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apiKey=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiKeyParamRegex.ReplaceAllString(rawURL, "apiKey=REDACTED")
	}
	query := parsed.Query()
	if query.Has("apiKey") {
		query.Set("apiKey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errOddsTransient)
}

func isRetryable(err error) bool {
	return crerr.Is(err, errOddsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
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

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
