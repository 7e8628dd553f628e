package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("THE_ODDS_API_KEY", "")
	t.Setenv("PREDICTIONS_CACHE_TTL", "")
	t.Setenv("APP_HTTP_ADDR", "")
	t.Setenv("APP_LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected dev env by default, got %q", cfg.AppEnv)
	}
	if cfg.ServiceName != "nfl-predictions-api" {
		t.Fatalf("unexpected service name: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.PredictionsTTL != 30*time.Minute {
		t.Fatalf("unexpected predictions ttl: %s", cfg.PredictionsTTL)
	}
	if cfg.OddsAPIConfigured() {
		t.Fatalf("expected odds api to be unconfigured without THE_ODDS_API_KEY")
	}
	if cfg.OddsAPISport != "americanfootball_nfl" || cfg.OddsAPIRegions != "us" {
		t.Fatalf("unexpected odds api defaults: sport=%q regions=%q", cfg.OddsAPISport, cfg.OddsAPIRegions)
	}
	if !cfg.NflverseCircuit.Enabled || cfg.NflverseCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected nflverse circuit defaults: %+v", cfg.NflverseCircuit)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
}

func TestLoad_OddsAPIKeyIsTrimmed(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("THE_ODDS_API_KEY", "  secret-key ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OddsAPIKey != "secret-key" || !cfg.OddsAPIConfigured() {
		t.Fatalf("unexpected odds api key: %q", cfg.OddsAPIKey)
	}
}

func TestLoad_PredictionsCacheTTLParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("custom", func(t *testing.T) {
		t.Setenv("PREDICTIONS_CACHE_TTL", "5m")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.PredictionsTTL != 5*time.Minute {
			t.Fatalf("unexpected predictions ttl: %s", cfg.PredictionsTTL)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("PREDICTIONS_CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid PREDICTIONS_CACHE_TTL")
		}
	})

	t.Run("non positive", func(t *testing.T) {
		t.Setenv("PREDICTIONS_CACHE_TTL", "-1m")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative PREDICTIONS_CACHE_TTL")
		}
	})
}

func TestLoad_PredictionsRefreshTimeout(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default below write timeout", func(t *testing.T) {
		t.Setenv("APP_WRITE_TIMEOUT", "")
		t.Setenv("PREDICTIONS_REFRESH_TIMEOUT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.PredictionsRefreshTimeout != 25*time.Second {
			t.Fatalf("unexpected refresh timeout: %s", cfg.PredictionsRefreshTimeout)
		}
		if cfg.PredictionsRefreshTimeout >= cfg.WriteTimeout {
			t.Fatalf("refresh timeout %s must be below write timeout %s", cfg.PredictionsRefreshTimeout, cfg.WriteTimeout)
		}
	})

	t.Run("not shorter than write timeout", func(t *testing.T) {
		t.Setenv("APP_WRITE_TIMEOUT", "20s")
		t.Setenv("PREDICTIONS_REFRESH_TIMEOUT", "20s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when refresh timeout reaches write timeout")
		}
	})

	t.Run("custom", func(t *testing.T) {
		t.Setenv("APP_WRITE_TIMEOUT", "90s")
		t.Setenv("PREDICTIONS_REFRESH_TIMEOUT", "60s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.PredictionsRefreshTimeout != time.Minute {
			t.Fatalf("unexpected refresh timeout: %s", cfg.PredictionsRefreshTimeout)
		}
	})
}

func TestLoad_CircuitBreakerParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("ODDS_API_CIRCUIT_ENABLED", "false")
		t.Setenv("ODDS_API_CIRCUIT_FAILURE_COUNT", "3")
		t.Setenv("ODDS_API_CIRCUIT_OPEN_TIMEOUT", "45s")
		t.Setenv("ODDS_API_CIRCUIT_HALF_OPEN_MAX_REQ", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		got := cfg.OddsAPICircuit
		if got.Enabled || got.FailureThreshold != 3 || got.OpenTimeout != 45*time.Second || got.HalfOpenMaxReq != 2 {
			t.Fatalf("unexpected odds api circuit config: %+v", got)
		}
	})

	t.Run("invalid failure count", func(t *testing.T) {
		t.Setenv("NFLVERSE_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for NFLVERSE_CIRCUIT_FAILURE_COUNT=0")
		}
	})

	t.Run("invalid enabled flag", func(t *testing.T) {
		t.Setenv("NFLVERSE_CIRCUIT_ENABLED", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid NFLVERSE_CIRCUIT_ENABLED")
		}
	})
}

func TestLoad_RetriesMustNotBeNegative(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ODDS_API_MAX_RETRIES", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative ODDS_API_MAX_RETRIES")
	}
}

func TestLoad_NflverseURLsMustBeHTTP(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("NFLVERSE_TEAMS_URL", "ftp://example.com/teams.csv")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-http NFLVERSE_TEAMS_URL")
	}
}

func TestLoad_LogFormatValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_LOG_FORMAT")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "nfl-predictions-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "nfl-predictions-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})

	t.Run("only separators", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " , ,")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when CORS_ALLOWED_ORIGINS has no entries")
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NFL_DOTENV_PROBE=from-file\nNFL_DOTENV_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	t.Setenv("NFL_DOTENV_KEEP", "from-env")
	t.Setenv("NFL_DOTENV_PROBE", "")
	if err := os.Unsetenv("NFL_DOTENV_PROBE"); err != nil {
		t.Fatalf("unset probe: %v", err)
	}

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("NFL_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("NFL_DOTENV_KEEP"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}
