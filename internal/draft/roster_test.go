package draft

import (
	"testing"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

func rosterWith(players ...models.Player) *Roster {
	r := NewRoster()
	for _, p := range players {
		r.Add(p)
	}
	return r
}

func rb(name string, pts float64) models.Player {
	return models.Player{ID: name, Name: name, Position: models.PositionRB, Points: pts}
}

func TestAddKeepsBucketSorted(t *testing.T) {
	r := rosterWith(rb("a", 10), rb("b", 25), rb("c", 17), rb("d", 25))

	bucket := r.Players(models.PositionRB)
	for i := 1; i < len(bucket); i++ {
		if bucket[i].Points > bucket[i-1].Points {
			t.Fatalf("bucket not sorted descending: %v then %v", bucket[i-1].Points, bucket[i].Points)
		}
	}
}

func TestStarterPointsTopTwoPlusFlex(t *testing.T) {
	// RB only, points 20/15/10/5: top 2 start (35), best leftover (10)
	// fills flex, the 5 is ignored.
	r := rosterWith(rb("a", 20), rb("b", 15), rb("c", 10), rb("d", 5))

	if got := r.StarterPoints(); got != 45 {
		t.Errorf("StarterPoints() = %v, want 45", got)
	}
}

func TestStarterPointsShortPositions(t *testing.T) {
	// One RB and one TE: fewer starters than slots, no padding
	r := rosterWith(
		rb("a", 12),
		models.Player{ID: "t", Position: models.PositionTE, Points: 8},
	)

	if got := r.StarterPoints(); got != 20 {
		t.Errorf("StarterPoints() = %v, want 20", got)
	}
}

func TestStarterPointsFlexAcrossPositions(t *testing.T) {
	r := rosterWith(
		rb("rb1", 20), rb("rb2", 18), rb("rb3", 9),
		models.Player{ID: "w1", Position: models.PositionWR, Points: 17},
		models.Player{ID: "w2", Position: models.PositionWR, Points: 14},
		models.Player{ID: "w3", Position: models.PositionWR, Points: 13},
		models.Player{ID: "t1", Position: models.PositionTE, Points: 11},
		models.Player{ID: "t2", Position: models.PositionTE, Points: 10},
	)

	// Starters: 20+18 RB, 17+14 WR, 11 TE. Flex candidates are rb3 (9),
	// w3 (13), t2 (10) -> 13.
	if got := r.StarterPoints(); got != 93 {
		t.Errorf("StarterPoints() = %v, want 93", got)
	}
}

func TestTotalPoints(t *testing.T) {
	r := rosterWith(rb("a", 20), rb("b", 15),
		models.Player{ID: "q", Position: models.PositionQB, Points: 30})

	if got := r.TotalPoints(); got != 65 {
		t.Errorf("TotalPoints() = %v, want 65", got)
	}
}

func TestIsStarterSlot(t *testing.T) {
	tests := []struct {
		pos  models.Position
		idx  int
		want bool
	}{
		{models.PositionQB, 0, true},
		{models.PositionQB, 1, false},
		{models.PositionRB, 0, true},
		{models.PositionRB, 1, true},
		{models.PositionRB, 2, false},
		{models.PositionWR, 1, true},
		{models.PositionWR, 2, false},
		{models.PositionTE, 0, true},
		{models.PositionTE, 1, false},
	}

	for _, tt := range tests {
		if got := IsStarterSlot(tt.pos, tt.idx); got != tt.want {
			t.Errorf("IsStarterSlot(%s, %d) = %v, want %v", tt.pos, tt.idx, got, tt.want)
		}
	}
}

func TestCountAndSize(t *testing.T) {
	r := rosterWith(rb("a", 1), rb("b", 2),
		models.Player{ID: "q", Position: models.PositionQB, Points: 3})

	if got := r.Count(models.PositionRB); got != 2 {
		t.Errorf("Count(RB) = %d, want 2", got)
	}
	if got := r.Count(models.PositionWR); got != 0 {
		t.Errorf("Count(WR) = %d, want 0", got)
	}
	if got := r.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}
