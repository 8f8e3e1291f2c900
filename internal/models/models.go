package models

// Position is one of the four draftable fantasy positions
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// AllPositions lists the draftable positions in display order
var AllPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE}

// Valid reports whether p is a known draftable position
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return true
	}
	return false
}

// StatRow is one imported projection line: the best-effort player name,
// the numeric fields parsed out of the source table, and the original
// string columns kept untouched for display
type StatRow struct {
	Name   string             `json:"name"`
	Fields map[string]float64 `json:"fields"`
	Attrs  map[string]string  `json:"attrs"`
}

// Player is a valuated draft candidate. VOR and Tier are always derived
// from Points and the player's rank within its position pool; they are
// never set independently.
type Player struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Position Position          `json:"position"`
	Points   float64           `json:"points"`
	VOR      float64           `json:"vor"`
	Tier     int               `json:"tier"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// DraftPick is one immutable entry in the pick ledger. Overall is 1-based
// and strictly increasing; Round and PickInRound are 1-based for display.
type DraftPick struct {
	Overall     int    `json:"overall"`
	Round       int    `json:"round"`
	PickInRound int    `json:"pickInRound"`
	Team        int    `json:"team"`
	Player      Player `json:"player"`
}

// TeamSummary is the display view of one franchise's roster
type TeamSummary struct {
	Index         int                   `json:"index"`
	Name          string                `json:"name"`
	IsUser        bool                  `json:"isUser"`
	Players       map[Position][]Player `json:"players"`
	TotalPoints   float64               `json:"totalPoints"`
	StarterPoints float64               `json:"starterPoints"`
}
