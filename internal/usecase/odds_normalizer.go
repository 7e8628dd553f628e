package usecase

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nfl-predictions/internal/domain/game"
)

const spreadsMarketKey = "spreads"

// DropReason explains why a raw odds record produced no game.
type DropReason string

const (
	DropInvalidRecord    DropReason = "invalid_record"
	DropBadCommenceTime  DropReason = "bad_commence_time"
	DropNoBookmaker      DropReason = "no_bookmaker"
	DropNoSpreadsMarket  DropReason = "no_spreads_market"
	DropTooFewOutcomes   DropReason = "too_few_outcomes"
	DropNoFavorite       DropReason = "no_favorite"
	DropFavoriteMismatch DropReason = "favorite_not_a_team"
)

type NormalizeResult struct {
	Games   []game.Game
	Dropped map[DropReason]int
}

func (r NormalizeResult) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// OddsNormalizer turns odds-provider events into games, skipping records
// without a usable spread. It is safe for concurrent use.
type OddsNormalizer struct {
	validate *validator.Validate
}

func NewOddsNormalizer() *OddsNormalizer {
	return &OddsNormalizer{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (n *OddsNormalizer) Normalize(raw []ExternalOddsGame) NormalizeResult {
	out := NormalizeResult{
		Games:   make([]game.Game, 0, len(raw)),
		Dropped: make(map[DropReason]int),
	}
	for _, item := range raw {
		g, reason := n.normalizeOne(item)
		if reason != "" {
			out.Dropped[reason]++
			continue
		}
		out.Games = append(out.Games, g)
	}
	return out
}

func (n *OddsNormalizer) normalizeOne(item ExternalOddsGame) (game.Game, DropReason) {
	if err := n.validate.Struct(item); err != nil {
		return game.Game{}, DropInvalidRecord
	}

	commence, err := time.Parse(time.RFC3339, item.CommenceTime)
	if err != nil {
		return game.Game{}, DropBadCommenceTime
	}

	if len(item.Bookmakers) == 0 {
		return game.Game{}, DropNoBookmaker
	}
	// Only the first listed bookmaker is consulted.
	bookmaker := item.Bookmakers[0]

	market, ok := findMarket(bookmaker.Markets, spreadsMarketKey)
	if !ok {
		return game.Game{}, DropNoSpreadsMarket
	}
	if len(market.Outcomes) < 2 {
		return game.Game{}, DropTooFewOutcomes
	}

	favorite, ok := firstNegativePoint(market.Outcomes)
	if !ok {
		return game.Game{}, DropNoFavorite
	}

	g := game.Game{
		ID:           item.ID,
		GameTimeUTC:  commence.UTC(),
		AwayTeam:     item.AwayTeam,
		HomeTeam:     item.HomeTeam,
		FavoriteTeam: favorite.Name,
		SpreadLine:   *favorite.Point,
		Bookmaker:    bookmaker.Key,
	}
	if !g.Valid() {
		return game.Game{}, DropFavoriteMismatch
	}
	return g, ""
}

func findMarket(markets []ExternalMarket, key string) (ExternalMarket, bool) {
	for _, m := range markets {
		if m.Key == key {
			return m, true
		}
	}
	return ExternalMarket{}, false
}

func firstNegativePoint(outcomes []ExternalOutcome) (ExternalOutcome, bool) {
	for _, o := range outcomes {
		if o.Point != nil && *o.Point < 0 {
			return o, true
		}
	}
	return ExternalOutcome{}, false
}
