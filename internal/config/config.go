package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/riskibarqy/nfl-predictions/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	LogLevel           logging.Level
	LogFormat          string
	CORSAllowedOrigins []string
	PredictionsTTL     time.Duration
	StatsMaxWorkers    int

	// PredictionsRefreshTimeout bounds one recompute and stays below
	// WriteTimeout so a slow refresh still ends in a JSON error response.
	PredictionsRefreshTimeout time.Duration

	OddsAPIKey        string
	OddsAPIBaseURL    string
	OddsAPISport      string
	OddsAPIRegions    string
	OddsAPIMarkets    string
	OddsAPITimeout    time.Duration
	OddsAPIMaxRetries int
	OddsAPICircuit    resilience.CircuitBreakerConfig

	NflverseWeeklyURL   string
	NflverseScheduleURL string
	NflverseTeamsURL    string
	NflverseTimeout     time.Duration
	NflverseMaxRetries  int
	NflverseCircuit     resilience.CircuitBreakerConfig

	MetricsEnabled             bool
	UptraceEnabled             bool
	UptraceDSN                 string
	PprofEnabled               bool
	PprofAddr                  string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// OddsAPIConfigured reports whether the odds API key is set. A missing key
// does not stop the process; predictions fail with a configuration error.
func (c Config) OddsAPIConfigured() bool {
	return c.OddsAPIKey != ""
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" by default)
// without overriding variables already present in the environment. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := getEnvAsPositiveDuration("APP_SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	logFormat := strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", "json")))
	if logFormat != "json" && logFormat != "console" {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", logFormat)
	}

	predictionsTTL, err := getEnvAsPositiveDuration("PREDICTIONS_CACHE_TTL", "30m")
	if err != nil {
		return Config{}, err
	}
	refreshTimeout, err := getEnvAsPositiveDuration("PREDICTIONS_REFRESH_TIMEOUT", "25s")
	if err != nil {
		return Config{}, err
	}
	if refreshTimeout >= writeTimeout {
		return Config{}, fmt.Errorf("PREDICTIONS_REFRESH_TIMEOUT (%s) must be shorter than APP_WRITE_TIMEOUT (%s)", refreshTimeout, writeTimeout)
	}
	statsMaxWorkers, err := getEnvAsInt("STATS_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_MAX_WORKERS: %w", err)
	}
	if statsMaxWorkers < 2 {
		return Config{}, fmt.Errorf("STATS_MAX_WORKERS must be >= 2")
	}

	oddsTimeout, err := getEnvAsPositiveDuration("ODDS_API_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	oddsMaxRetries, err := getEnvAsInt("ODDS_API_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_MAX_RETRIES: %w", err)
	}
	if oddsMaxRetries < 0 {
		return Config{}, fmt.Errorf("ODDS_API_MAX_RETRIES must be >= 0")
	}
	oddsCircuit, err := loadCircuitBreaker("ODDS_API")
	if err != nil {
		return Config{}, err
	}

	nflverseTimeout, err := getEnvAsPositiveDuration("NFLVERSE_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	nflverseMaxRetries, err := getEnvAsInt("NFLVERSE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFLVERSE_MAX_RETRIES: %w", err)
	}
	if nflverseMaxRetries < 0 {
		return Config{}, fmt.Errorf("NFLVERSE_MAX_RETRIES must be >= 0")
	}
	nflverseCircuit, err := loadCircuitBreaker("NFLVERSE")
	if err != nil {
		return Config{}, err
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "nfl-predictions-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		ShutdownTimeout:    shutdownTimeout,
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:          logFormat,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PredictionsTTL:     predictionsTTL,
		StatsMaxWorkers:    statsMaxWorkers,

		PredictionsRefreshTimeout: refreshTimeout,

		OddsAPIKey:        strings.TrimSpace(getEnv("THE_ODDS_API_KEY", "")),
		OddsAPIBaseURL:    strings.TrimSpace(getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com")),
		OddsAPISport:      strings.TrimSpace(getEnv("ODDS_API_SPORT", "americanfootball_nfl")),
		OddsAPIRegions:    strings.TrimSpace(getEnv("ODDS_API_REGIONS", "us")),
		OddsAPIMarkets:    strings.TrimSpace(getEnv("ODDS_API_MARKETS", "spreads,h2h")),
		OddsAPITimeout:    oddsTimeout,
		OddsAPIMaxRetries: oddsMaxRetries,
		OddsAPICircuit:    oddsCircuit,

		NflverseWeeklyURL:   strings.TrimSpace(getEnv("NFLVERSE_WEEKLY_URL", "")),
		NflverseScheduleURL: strings.TrimSpace(getEnv("NFLVERSE_SCHEDULE_URL", "")),
		NflverseTeamsURL:    strings.TrimSpace(getEnv("NFLVERSE_TEAMS_URL", "")),
		NflverseTimeout:     nflverseTimeout,
		NflverseMaxRetries:  nflverseMaxRetries,
		NflverseCircuit:     nflverseCircuit,

		MetricsEnabled:             metricsEnabled,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	for _, raw := range []struct{ key, value string }{
		{"NFLVERSE_WEEKLY_URL", cfg.NflverseWeeklyURL},
		{"NFLVERSE_SCHEDULE_URL", cfg.NflverseScheduleURL},
		{"NFLVERSE_TEAMS_URL", cfg.NflverseTeamsURL},
		{"ODDS_API_BASE_URL", cfg.OddsAPIBaseURL},
	} {
		if raw.value != "" && !strings.HasPrefix(raw.value, "http://") && !strings.HasPrefix(raw.value, "https://") {
			return Config{}, fmt.Errorf("%s must be an http(s) url", raw.key)
		}
	}

	return cfg, nil
}

// loadCircuitBreaker reads <prefix>_CIRCUIT_ENABLED, _FAILURE_COUNT,
// _OPEN_TIMEOUT and _HALF_OPEN_MAX_REQ.
func loadCircuitBreaker(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabledKey := prefix + "_CIRCUIT_ENABLED"
	enabled, err := strconv.ParseBool(getEnv(enabledKey, strconv.FormatBool(defaults.Enabled)))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", enabledKey, err)
	}

	failureKey := prefix + "_CIRCUIT_FAILURE_COUNT"
	failureCount, err := getEnvAsInt(failureKey, defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", failureKey, err)
	}
	if failureCount < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", failureKey)
	}

	openTimeout, err := getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String())
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}

	halfOpenKey := prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	halfOpenMaxReq, err := getEnvAsInt(halfOpenKey, defaults.HalfOpenMaxReq)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", halfOpenKey, err)
	}
	if halfOpenMaxReq < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", halfOpenKey)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureCount,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
