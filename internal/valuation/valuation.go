package valuation

import (
	"sort"
	"strings"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/scoring"
)

// Params controls how raw scored players are turned into a valuated pool
type Params struct {
	// ReplacementRank is the per-position rank whose points define
	// replacement level
	ReplacementRank map[models.Position]int

	// Weight is the per-position scarcity multiplier applied to VOR when
	// ordering the combined pool
	Weight map[models.Position]float64

	// TierWidth is how many players share a tier within a position
	TierWidth int
}

// DefaultParams returns the standard single-QB league parameters: scarcer
// positions carry heavier weights, and replacement level sits at the last
// typical starter across a 12-team league.
func DefaultParams() Params {
	return Params{
		ReplacementRank: map[models.Position]int{
			models.PositionQB: 12,
			models.PositionRB: 24,
			models.PositionWR: 24,
			models.PositionTE: 12,
		},
		Weight: map[models.Position]float64{
			models.PositionQB: 0.80,
			models.PositionRB: 1.00,
			models.PositionWR: 0.95,
			models.PositionTE: 0.85,
		},
		TierWidth: 4,
	}
}

// ScoreRows converts imported stat rows for one position into scored
// players. VOR and tier are zero here; RankPosition assigns them.
func ScoreRows(rows []models.StatRow, pos models.Position, rs scoring.Ruleset) []models.Player {
	players := make([]models.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, models.Player{
			Name:     row.Name,
			Position: pos,
			Points:   scoring.Score(row.Fields, rs),
			Attrs:    row.Attrs,
		})
	}
	return players
}

// dedupeKey trims and lowercases a player name so stale duplicate listings
// for the same athlete collapse to one entry
func dedupeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Dedupe collapses players that share a case-insensitive trimmed name,
// keeping the higher-scoring entry. Order of survivors is unspecified;
// callers sort afterwards.
func Dedupe(players []models.Player) []models.Player {
	best := make(map[string]models.Player, len(players))
	order := make([]string, 0, len(players))

	for _, p := range players {
		key := dedupeKey(p.Name)
		existing, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = p
			continue
		}
		if p.Points > existing.Points {
			best[key] = p
		}
	}

	out := make([]models.Player, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// RankPosition dedupes and sorts one position's players by points
// descending, then derives VOR and tier for every entry. Replacement level
// is the points of the player at the configured rank; if fewer players
// exist, replacement is zero and VOR equals raw points.
func RankPosition(players []models.Player, pos models.Position, p Params) []models.Player {
	ranked := Dedupe(players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})

	replacement := 0.0
	if rank := p.ReplacementRank[pos]; rank > 0 && len(ranked) >= rank {
		replacement = ranked[rank-1].Points
	}

	width := p.TierWidth
	if width <= 0 {
		width = 4
	}

	for i := range ranked {
		ranked[i].VOR = scoring.Round2(ranked[i].Points - replacement)
		ranked[i].Tier = i/width + 1
	}
	return ranked
}

// BuildPool valuates each position pool and merges them into the combined
// "best available" ordering: descending by scarcity-weighted VOR.
func BuildPool(byPosition map[models.Position][]models.Player, p Params) []models.Player {
	var pool []models.Player
	for _, pos := range models.AllPositions {
		pool = append(pool, RankPosition(byPosition[pos], pos, p)...)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return weightedVOR(pool[i], p) > weightedVOR(pool[j], p)
	})
	return pool
}

// WeightedVOR is the position-scarcity-adjusted value used for pool
// ordering and as the opponent heuristic's base score
func WeightedVOR(player models.Player, weight map[models.Position]float64) float64 {
	w, ok := weight[player.Position]
	if !ok {
		w = 1.0
	}
	return player.VOR * w
}

func weightedVOR(player models.Player, p Params) float64 {
	return WeightedVOR(player, p.Weight)
}
