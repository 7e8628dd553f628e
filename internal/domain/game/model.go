package game

import "time"

// Game is a scheduled matchup with the favorite's spread from one bookmaker.
type Game struct {
	ID           string
	GameTimeUTC  time.Time
	AwayTeam     string
	HomeTeam     string
	FavoriteTeam string
	SpreadLine   float64
	Bookmaker    string
}

func (g Game) FavoriteIsHome() bool {
	return g.FavoriteTeam == g.HomeTeam
}

// Valid reports whether the favorite is one of the two teams and holds a negative line.
func (g Game) Valid() bool {
	if g.FavoriteTeam == "" || g.SpreadLine >= 0 {
		return false
	}
	return g.FavoriteTeam == g.HomeTeam || g.FavoriteTeam == g.AwayTeam
}
