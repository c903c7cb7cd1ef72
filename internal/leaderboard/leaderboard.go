// Package leaderboard turns recorded matches into ranked player standings.
//
// Scoring is two-pass: a first pass accumulates base points per player from
// match outcomes, a second pass adds a small Buchholz adjustment (the sum of
// each player's opponents' base points, scaled by a weight) so that wins
// against stronger opposition rank higher. The weight is deliberately small
// enough that Buchholz only ever breaks ties between equal base points, never
// reorders them.
package leaderboard

import (
	"sort"

	"github.com/mknudsen/courtside/internal/club"
)

// Config holds the scoring knobs.
type Config struct {
	WinPoints      float64
	DrawPoints     float64
	LossPoints     float64
	BuchholzWeight float64
}

// DefaultConfig is the standard club scoring.
var DefaultConfig = Config{
	WinPoints:      3,
	DrawPoints:     1,
	LossPoints:     0,
	BuchholzWeight: 0.004,
}

// PlayerStat is one row of the leaderboard. OpponentPoints is the raw sum of
// base points across the distinct opponents a player has faced; Buchholz is
// that sum scaled by the configured weight, zero when the adjustment is off.
type PlayerStat struct {
	Player         club.Player `json:"player"`
	Played         int         `json:"played"`
	Won            int         `json:"won"`
	Drawn          int         `json:"drawn"`
	Lost           int         `json:"lost"`
	Points         float64     `json:"points"`
	OpponentPoints float64     `json:"opponent_points"`
	Buchholz       float64     `json:"buchholz"`
	opponents      map[string]struct{}
}

// WinPercentage is the share of played matches won, 0 for a player with no
// matches.
func (s PlayerStat) WinPercentage() float64 {
	if s.Played == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Played) * 100
}

// Aggregate computes the leaderboard over matches. Players appear in the
// order they are first encountered before sorting, so the final ordering is
// fully deterministic: points descending, then player ID ascending.
func Aggregate(matches []*club.Match, cfg Config, buchholzEnabled bool) []PlayerStat {
	byID := make(map[string]*PlayerStat)
	var order []string

	stat := func(p club.Player) *PlayerStat {
		s, ok := byID[p.ID]
		if !ok {
			s = &PlayerStat{Player: p, opponents: make(map[string]struct{})}
			byID[p.ID] = s
			order = append(order, p.ID)
		}
		return s
	}

	// First pass: base points and opponent bookkeeping.
	for _, m := range matches {
		for _, p := range m.Team1 {
			s := stat(p)
			s.Played++
			for _, opp := range m.Team2 {
				s.opponents[opp.ID] = struct{}{}
			}
			switch m.Winner {
			case 1:
				s.Won++
				s.Points += cfg.WinPoints
			case 2:
				s.Lost++
				s.Points += cfg.LossPoints
			default:
				s.Drawn++
				s.Points += cfg.DrawPoints
			}
		}
		for _, p := range m.Team2 {
			s := stat(p)
			s.Played++
			for _, opp := range m.Team1 {
				s.opponents[opp.ID] = struct{}{}
			}
			switch m.Winner {
			case 2:
				s.Won++
				s.Points += cfg.WinPoints
			case 1:
				s.Lost++
				s.Points += cfg.LossPoints
			default:
				s.Drawn++
				s.Points += cfg.DrawPoints
			}
		}
	}

	// Second pass: opponent sums over a snapshot of the base points, so the
	// adjustment of one player never feeds into another's. Each distinct
	// opponent counts once regardless of how often the pairing occurred.
	base := make(map[string]float64, len(byID))
	for id, s := range byID {
		base[id] = s.Points
	}
	for _, s := range byID {
		for opp := range s.opponents {
			s.OpponentPoints += base[opp]
		}
		if buchholzEnabled {
			s.Buchholz = s.OpponentPoints * cfg.BuchholzWeight
			s.Points += s.Buchholz
		}
	}

	stats := make([]PlayerStat, 0, len(order))
	for _, id := range order {
		stats = append(stats, *byID[id])
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Points != stats[j].Points {
			return stats[i].Points > stats[j].Points
		}
		return stats[i].Player.ID < stats[j].Player.ID
	})
	return stats
}
