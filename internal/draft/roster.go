package draft

import (
	"sort"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

// starterSlots is the number of dedicated starting slots per position.
// One extra flex slot is filled by the best leftover RB, WR or TE.
var starterSlots = map[models.Position]int{
	models.PositionQB: 1,
	models.PositionRB: 2,
	models.PositionWR: 2,
	models.PositionTE: 1,
}

// flexPositions are the positions eligible for the flex slot
var flexPositions = []models.Position{models.PositionRB, models.PositionWR, models.PositionTE}

// Roster holds one team's drafted players, bucketed by position. Buckets
// are kept sorted by points descending at insertion time; StarterPoints
// and IsStarterSlot both rely on that invariant.
type Roster struct {
	buckets map[models.Position][]models.Player
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{buckets: make(map[models.Position][]models.Player)}
}

// Add inserts a player into its position bucket, keeping the bucket sorted
// by points descending. Legality against position maximums is the state
// machine's job; the roster itself does not reject.
func (r *Roster) Add(p models.Player) {
	bucket := r.buckets[p.Position]
	idx := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].Points < p.Points
	})
	bucket = append(bucket, models.Player{})
	copy(bucket[idx+1:], bucket[idx:])
	bucket[idx] = p
	r.buckets[p.Position] = bucket
}

// Count returns how many players are rostered at a position
func (r *Roster) Count(pos models.Position) int {
	return len(r.buckets[pos])
}

// Size returns the total number of rostered players
func (r *Roster) Size() int {
	n := 0
	for _, bucket := range r.buckets {
		n += len(bucket)
	}
	return n
}

// Players returns a copy of the position bucket, best first
func (r *Roster) Players(pos models.Position) []models.Player {
	bucket := r.buckets[pos]
	out := make([]models.Player, len(bucket))
	copy(out, bucket)
	return out
}

// TotalPoints sums projected points across every rostered player
func (r *Roster) TotalPoints() float64 {
	total := 0.0
	for _, bucket := range r.buckets {
		for _, p := range bucket {
			total += p.Points
		}
	}
	return total
}

// StarterPoints sums the projected points of the starting lineup: the best
// 1 QB, 2 RB, 2 WR and 1 TE, plus one flex filled by the highest-scoring
// leftover RB, WR or TE. Positions without enough players simply
// contribute fewer starters.
func (r *Roster) StarterPoints() float64 {
	total := 0.0
	for pos, slots := range starterSlots {
		bucket := r.buckets[pos]
		for i := 0; i < slots && i < len(bucket); i++ {
			total += bucket[i].Points
		}
	}

	var flex float64
	haveFlex := false
	for _, pos := range flexPositions {
		bucket := r.buckets[pos]
		if len(bucket) > starterSlots[pos] {
			// Buckets are sorted, so the first leftover is the best one
			if pts := bucket[starterSlots[pos]].Points; !haveFlex || pts > flex {
				flex = pts
				haveFlex = true
			}
		}
	}
	if haveFlex {
		total += flex
	}
	return total
}

// IsStarterSlot reports whether the given index within a position bucket
// is a dedicated starting slot. This is a display classification only: it
// does not account for the flex slot.
func IsStarterSlot(pos models.Position, idx int) bool {
	return idx < starterSlots[pos]
}
