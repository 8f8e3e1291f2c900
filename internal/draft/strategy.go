package draft

import (
	"math/rand"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/valuation"
)

// PositionRule is one position's roster-construction targets
type PositionRule struct {
	Min    int
	Max    int
	Weight float64
}

// DefaultRules mirrors a typical 15-round bench build: two starters plus
// depth at RB/WR, a starter and a backup at QB/TE.
func DefaultRules() map[models.Position]PositionRule {
	return map[models.Position]PositionRule{
		models.PositionQB: {Min: 1, Max: 2, Weight: 0.80},
		models.PositionRB: {Min: 2, Max: 6, Weight: 1.00},
		models.PositionWR: {Min: 2, Max: 6, Weight: 0.95},
		models.PositionTE: {Min: 1, Max: 2, Weight: 0.85},
	}
}

// Strategy picks for the simulated opponents. Scoring is deterministic
// apart from a bounded random perturbation, which lives behind an
// injectable source so tests can pin it.
type Strategy struct {
	rules map[models.Position]PositionRule
	rng   *rand.Rand
}

// NewStrategy creates a strategy using the given position rules and random
// source. A nil source falls back to an unseeded global-style source.
func NewStrategy(rules map[models.Position]PositionRule, src rand.Source) *Strategy {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &Strategy{rules: rules, rng: rand.New(src)}
}

// weights exposes the scarcity weights in the form valuation expects
func (s *Strategy) weights() map[models.Position]float64 {
	w := make(map[models.Position]float64, len(s.rules))
	for pos, rule := range s.rules {
		w[pos] = rule.Weight
	}
	return w
}

// Pick selects one player for the acting team, or false if the pool is
// empty. round is 1-based; remainingSlots is how many picks the team still
// has to make.
func (s *Strategy) Pick(available []models.Player, roster *Roster, round, remainingSlots int) (models.Player, bool) {
	if len(available) == 0 {
		return models.Player{}, false
	}

	counts := make(map[models.Position]int, len(s.rules))
	needed := make(map[models.Position]bool)
	for pos, rule := range s.rules {
		counts[pos] = roster.Count(pos)
		if counts[pos] < rule.Min {
			needed[pos] = true
		}
	}

	// Only consider positions with room left; if every position is maxed
	// (which should not occur before the roster is full) fall back to the
	// whole pool.
	candidates := make([]models.Player, 0, len(available))
	for _, p := range available {
		rule, ok := s.rules[p.Position]
		if !ok || counts[p.Position] < rule.Max {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = available
	}

	// Urgency override: when the team is running out of room to cover a
	// shortfall, narrow to needed positions only.
	if len(needed) > 0 && remainingSlots <= len(needed)+2 {
		narrowed := candidates[:0:0]
		for _, p := range candidates {
			if needed[p.Position] {
				narrowed = append(narrowed, p)
			}
		}
		if len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	weights := s.weights()
	best := -1
	bestScore := 0.0
	for i, p := range candidates {
		score := valuation.WeightedVOR(p, weights)
		if needed[p.Position] {
			score *= 1.3
		}
		if p.Tier > 0 && p.Tier <= 2 {
			score *= 1.1
		}
		// Late-round scramble: avoid finishing with an empty QB or TE
		// starting slot
		if round >= 8 && counts[p.Position] == 0 &&
			(p.Position == models.PositionQB || p.Position == models.PositionTE) {
			score *= 1.25
		}
		score *= 0.95 + 0.1*s.rng.Float64()

		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best == -1 {
		return available[0], true
	}
	return candidates[best], true
}
