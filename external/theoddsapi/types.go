package theoddsapi

import "github.com/riskibarqy/nfl-predictions/internal/usecase"

type oddsEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime string          `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	LastUpdate string       `json:"last_update"`
	Markets    []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key        string        `json:"key"`
	LastUpdate string        `json:"last_update"`
	Outcomes   []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

func (e oddsEvent) toExternal() usecase.ExternalOddsGame {
	bookmakers := make([]usecase.ExternalBookmaker, 0, len(e.Bookmakers))
	for _, b := range e.Bookmakers {
		markets := make([]usecase.ExternalMarket, 0, len(b.Markets))
		for _, m := range b.Markets {
			outcomes := make([]usecase.ExternalOutcome, 0, len(m.Outcomes))
			for _, o := range m.Outcomes {
				outcomes = append(outcomes, usecase.ExternalOutcome{
					Name:  o.Name,
					Price: o.Price,
					Point: o.Point,
				})
			}
			markets = append(markets, usecase.ExternalMarket{Key: m.Key, Outcomes: outcomes})
		}
		bookmakers = append(bookmakers, usecase.ExternalBookmaker{Key: b.Key, Title: b.Title, Markets: markets})
	}

	return usecase.ExternalOddsGame{
		ID:           e.ID,
		SportKey:     e.SportKey,
		CommenceTime: e.CommenceTime,
		HomeTeam:     e.HomeTeam,
		AwayTeam:     e.AwayTeam,
		Bookmakers:   bookmakers,
	}
}
