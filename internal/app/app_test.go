package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/nfl-predictions/internal/config"
	"github.com/riskibarqy/nfl-predictions/internal/interfaces/httpapi"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/riskibarqy/nfl-predictions/internal/platform/resilience"
	"github.com/stretchr/testify/require"
)

const teamsCSV = "team_abbr,team_name\nKC,Kansas City Chiefs\nBUF,Buffalo Bills\n"

func upstreams(t *testing.T, now time.Time) (*httptest.Server, *httptest.Server) {
	t.Helper()

	year := now.Year()
	games := fmt.Sprintf("game_id,season,game_type,week,away_team,away_score,home_team,home_score,result,spread_line\n"+
		"%[1]d_01_BUF_KC,%[1]d,REG,1,BUF,20,KC,27,7,3\n"+
		"%[1]d_02_KC_BUF,%[1]d,REG,2,KC,21,BUF,24,3,1.5\n", year)

	nflverse := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/games.csv":
			_, _ = w.Write([]byte(games))
		case "/teams.csv":
			_, _ = w.Write([]byte(teamsCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(nflverse.Close)

	commence := now.UTC().Truncate(time.Second).Format(time.RFC3339)
	odds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `[{"id":"evt-1","sport_key":"americanfootball_nfl","commence_time":%q,
			"home_team":"Kansas City Chiefs","away_team":"Buffalo Bills",
			"bookmakers":[{"key":"fanduel","title":"FanDuel","markets":[{"key":"spreads","outcomes":[
				{"name":"Kansas City Chiefs","price":-110,"point":-3.5},
				{"name":"Buffalo Bills","price":-110,"point":3.5}]}]}]}]`, commence)
	}))
	t.Cleanup(odds.Close)

	return nflverse, odds
}

func testConfig(nflverseURL, oddsURL, apiKey string) config.Config {
	breaker := resilience.DefaultCircuitBreakerConfig()
	cfg := config.Config{
		AppEnv:              config.EnvDev,
		ServiceName:         "nfl-predictions-api",
		HTTPAddr:            ":0",
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		CORSAllowedOrigins:  []string{"*"},
		PredictionsTTL:      30 * time.Minute,
		StatsMaxWorkers:     2,
		OddsAPIKey:          apiKey,
		OddsAPIBaseURL:      oddsURL,
		OddsAPITimeout:      5 * time.Second,
		OddsAPICircuit:      breaker,
		NflverseWeeklyURL:   nflverseURL + "/games.csv",
		NflverseScheduleURL: nflverseURL + "/games.csv",
		NflverseTeamsURL:    nflverseURL + "/teams.csv",
		NflverseTimeout:     5 * time.Second,
		NflverseCircuit:     breaker,
		MetricsEnabled:      true,
	}
	cfg.PredictionsRefreshTimeout = 4 * time.Second
	return cfg
}

func TestNewHTTPServer_ServesPredictions(t *testing.T) {
	nflverse, odds := upstreams(t, time.Now())

	srv, err := NewHTTPServer(testConfig(nflverse.URL, odds.URL, "test-key"), logging.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, httpapi.PredictionsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body []map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "evt-1", body[0]["id"])
	require.Equal(t, "Kansas City Chiefs", body[0]["favorite"])
	require.Equal(t, "fanduel", body[0]["bookmaker"])
	require.Equal(t, "1-1", body[0]["favorite_ats_record"])

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `nfl_predictions_prediction_cache_lookups_total{result="miss"} 1`))

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"warm":true`)
}

func TestNewHTTPServer_MissingAPIKey(t *testing.T) {
	nflverse, odds := upstreams(t, time.Now())

	srv, err := NewHTTPServer(testConfig(nflverse.URL, odds.URL, ""), logging.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, httpapi.PredictionsPath, nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "api key is not configured on the server")
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := testConfig("http://127.0.0.1", "http://127.0.0.1", "")
	cfg.HTTPAddr = ""

	_, err := NewHTTPServer(cfg, nil)
	require.Error(t, err)
}
