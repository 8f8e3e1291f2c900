package draft

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/pubsub"
)

// testPool builds a valuated pool big enough for a full draft
func testPool(teams, rounds int) []models.Player {
	positions := []struct {
		pos   models.Position
		share int
	}{
		{models.PositionRB, 40},
		{models.PositionWR, 35},
		{models.PositionQB, 15},
		{models.PositionTE, 10},
	}

	// Generous supply: RB/WR depth well past what rosters can absorb so
	// the endgame never strands a team with only maxed positions left
	total := teams * rounds
	var out []models.Player
	for _, p := range positions {
		n := total*p.share/100 + total/8 + 4
		for i := 0; i < n; i++ {
			out = append(out, models.Player{
				ID:       fmt.Sprintf("%s-%d", p.pos, i),
				Name:     fmt.Sprintf("%s Player %d", p.pos, i),
				Position: p.pos,
				Points:   float64(300 - i*3),
				VOR:      float64(150 - i*3),
				Tier:     i/4 + 1,
			})
		}
	}
	return out
}

func newTestEngine(teams, rounds int) *Engine {
	settings := Settings{
		Teams:    teams,
		Rounds:   rounds,
		UserTeam: 0,
		AutoPick: true, // every seat automated so Step can run the draft
	}
	return New(settings, NewStrategy(DefaultRules(), rand.NewSource(7)), pubsub.New())
}

func runToCompletion(t *testing.T, e *Engine) {
	t.Helper()
	limit := 10000
	for e.Phase() == PhaseDrafting {
		if !e.Step() {
			t.Fatalf("Step() stalled with draft still in phase %s", e.Phase())
		}
		if limit--; limit == 0 {
			t.Fatal("draft did not terminate")
		}
	}
}

func TestDraftCompletesAtExactPickTarget(t *testing.T) {
	e := newTestEngine(12, 15)
	e.Start(testPool(12, 15))

	for i := 0; i < 179; i++ {
		require.Truef(t, e.Step(), "pick %d failed", i+1)
		require.Equalf(t, PhaseDrafting, e.Phase(), "draft completed early at pick %d", i+1)
	}

	require.True(t, e.Step())
	assert.Equal(t, PhaseComplete, e.Phase())
	assert.Len(t, e.Snapshot().Picks, 180)

	// Terminal: further steps do nothing without a reset
	assert.False(t, e.Step())
	assert.Len(t, e.Snapshot().Picks, 180)
}

func TestOverallStrictlyIncreasing(t *testing.T) {
	e := newTestEngine(4, 6)
	e.Start(testPool(4, 6))
	runToCompletion(t, e)

	picks := e.Snapshot().Picks
	require.Len(t, picks, 24)
	for i, pick := range picks {
		assert.Equalf(t, i+1, pick.Overall, "overall at ledger index %d", i)
	}
}

func TestLedgerAgreesWithScheduler(t *testing.T) {
	e := newTestEngine(6, 8)
	e.Start(testPool(6, 8))
	runToCompletion(t, e)

	for i, pick := range e.Snapshot().Picks {
		round, pickInRound, overall, team := Slot(i, 6)
		assert.Equal(t, round, pick.Round)
		assert.Equal(t, pickInRound, pick.PickInRound)
		assert.Equal(t, overall, pick.Overall)
		assert.Equal(t, team, pick.Team)
	}
}

func TestRosterLegalityHolds(t *testing.T) {
	e := newTestEngine(12, 15)
	e.Start(testPool(12, 15))
	runToCompletion(t, e)

	rules := DefaultRules()
	snap := e.Snapshot()
	for _, team := range snap.Teams {
		for pos, rule := range rules {
			assert.LessOrEqualf(t, len(team.Players[pos]), rule.Max,
				"team %d exceeded max at %s", team.Index, pos)
		}
	}

	// A player appears on exactly one roster, exactly once
	seen := make(map[string]int)
	for _, team := range snap.Teams {
		for _, bucket := range team.Players {
			for _, p := range bucket {
				seen[p.ID]++
			}
		}
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "player %s rostered %d times", id, n)
	}
}

func TestResetIdempotence(t *testing.T) {
	e := newTestEngine(4, 4)
	pool := testPool(4, 4)
	e.Start(pool)
	for i := 0; i < 5; i++ {
		e.Step()
	}

	e.Reset()
	first := e.Snapshot()
	e.Reset()
	second := e.Snapshot()

	assert.Equal(t, PhaseSetup, first.Phase)
	assert.Equal(t, first.Phase, second.Phase)
	assert.Empty(t, second.Picks)
	assert.Len(t, second.Available, len(first.Available))
	for _, team := range second.Teams {
		assert.Zero(t, team.TotalPoints)
	}
}

func TestPickOutsideDraftingIsNoOp(t *testing.T) {
	e := newTestEngine(4, 4)

	// Still in setup
	assert.False(t, e.ApplyPick("RB-0"))
	assert.Empty(t, e.Snapshot().Picks)

	e.Start(testPool(4, 4))
	assert.False(t, e.ApplyPick("no-such-player"))
	assert.Empty(t, e.Snapshot().Picks)
}

func TestUserPickOutOfTurnIsNoOp(t *testing.T) {
	settings := Settings{Teams: 4, Rounds: 4, UserTeam: 2}
	e := New(settings, NewStrategy(DefaultRules(), rand.NewSource(7)), pubsub.New())
	pool := testPool(4, 4)
	e.Start(pool)

	// A deep bench player the first two automated picks will not touch
	target := pool[len(pool)-1]

	// Pick 0 belongs to team 0, not the user at seat 2
	assert.False(t, e.UserPick(target.ID))
	assert.Empty(t, e.Snapshot().Picks)

	e.Step() // team 0
	e.Step() // team 1
	assert.True(t, e.UserPick(target.ID))
	require.Len(t, e.Snapshot().Picks, 3)
	assert.Equal(t, 2, e.Snapshot().Picks[2].Team)
}

func TestPoolExhaustionCompletesEarly(t *testing.T) {
	e := newTestEngine(4, 10) // target 40 picks
	small := testPool(4, 10)[:12]
	e.Start(small)

	limit := 100
	for e.Phase() == PhaseDrafting && limit > 0 {
		e.Step()
		limit--
	}

	assert.Equal(t, PhaseComplete, e.Phase())
	assert.Len(t, e.Snapshot().Picks, 12)
}

func TestStartWithEmptyPool(t *testing.T) {
	e := newTestEngine(4, 4)
	e.Start(nil)
	assert.Equal(t, PhaseComplete, e.Phase())
	assert.Empty(t, e.Snapshot().Picks)
}

func TestStaleAutoPickDiscardedAfterReset(t *testing.T) {
	e := newTestEngine(4, 4)
	e.SetPickDelay(20 * time.Millisecond)
	e.Start(testPool(4, 4))

	// Reset before the scheduled pick fires; the stale timer must not
	// touch the fresh draft.
	e.Reset()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, PhaseSetup, e.Phase())
	assert.Empty(t, e.Snapshot().Picks)
}

func TestStaleAutoPickDiscardedAfterPick(t *testing.T) {
	e := newTestEngine(4, 4)
	e.Start(testPool(4, 4))

	e.mu.Lock()
	armed := e.epoch
	e.mu.Unlock()

	require.True(t, e.Step())

	// A second timer armed before that pick (say, SetAutoPick called right
	// after Start) must discard itself rather than run its own pacing
	// cascade alongside the first.
	assert.False(t, e.stepAuto(armed))
	assert.Len(t, e.Snapshot().Picks, 1)
}

func TestTimerDrivenDraftCompletes(t *testing.T) {
	settings := Settings{
		Teams:     2,
		Rounds:    2,
		UserTeam:  0,
		AutoPick:  true,
		PickDelay: time.Millisecond,
	}
	e := New(settings, NewStrategy(DefaultRules(), rand.NewSource(7)), pubsub.New())
	e.Start(testPool(2, 2))

	deadline := time.After(5 * time.Second)
	for e.Phase() != PhaseComplete {
		select {
		case <-deadline:
			t.Fatalf("timer-driven draft did not complete; phase %s, %d picks",
				e.Phase(), len(e.Snapshot().Picks))
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Len(t, e.Snapshot().Picks, 4)
}

func TestStandingsSortedByStarterPoints(t *testing.T) {
	e := newTestEngine(6, 8)
	e.Start(testPool(6, 8))
	runToCompletion(t, e)

	standings := e.Standings()
	require.Len(t, standings, 6)
	for i := 1; i < len(standings); i++ {
		assert.GreaterOrEqual(t, standings[i-1].StarterPoints, standings[i].StarterPoints)
		assert.Equal(t, i+1, standings[i].Rank)
	}
}

func TestSnapshotOnClock(t *testing.T) {
	e := newTestEngine(4, 4)
	e.Start(testPool(4, 4))

	snap := e.Snapshot()
	require.NotNil(t, snap.OnClock)
	assert.Equal(t, 0, snap.OnClock.Team)
	assert.Equal(t, 1, snap.OnClock.Round)
	assert.Equal(t, 1, snap.OnClock.Overall)
	assert.True(t, snap.OnClock.IsUser)

	runToCompletion(t, e)
	assert.Nil(t, e.Snapshot().OnClock)
}
