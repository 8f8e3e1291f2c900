package scoring

import (
	"math"
	"strings"
)

// Ruleset selects how receptions are weighted. All other stat weights are
// fixed across rulesets.
type Ruleset string

const (
	Standard Ruleset = "STANDARD"
	HalfPPR  Ruleset = "HALF_PPR"
	PPR      Ruleset = "PPR"
)

// Canonical stat field keys produced by the importer
const (
	StatPassYds = "pass_yds"
	StatPassTD  = "pass_td"
	StatInt     = "int"
	StatRushYds = "rush_yds"
	StatRushTD  = "rush_td"
	StatRecYds  = "rec_yds"
	StatRecTD   = "rec_td"
	StatRec     = "rec"
)

// ParseRuleset normalizes a ruleset name, accepting a few spellings seen
// in league settings files. Unknown values fall back to Standard.
func ParseRuleset(s string) Ruleset {
	switch strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "PPR", "FULL_PPR":
		return PPR
	case "HALF_PPR", "HALF":
		return HalfPPR
	default:
		return Standard
	}
}

// ReceptionValue returns the per-reception weight for the ruleset
func (r Ruleset) ReceptionValue() float64 {
	switch r {
	case PPR:
		return 1.0
	case HalfPPR:
		return 0.5
	default:
		return 0
	}
}

// Score converts a projected stat line into fantasy points under the given
// ruleset, rounded to two decimal places. Passing, rushing and receiving
// stats are all summed whenever present; absent fields contribute zero.
func Score(fields map[string]float64, r Ruleset) float64 {
	pts := fields[StatPassYds]*0.04 +
		fields[StatPassTD]*4 +
		fields[StatInt]*-2 +
		fields[StatRushYds]*0.1 +
		fields[StatRushTD]*6 +
		fields[StatRecYds]*0.1 +
		fields[StatRecTD]*6 +
		fields[StatRec]*r.ReceptionValue()

	return Round2(pts)
}

// Round2 rounds to two decimal places
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
