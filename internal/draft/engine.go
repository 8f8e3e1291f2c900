package draft

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/pubsub"
	"github.com/KianBaghai/fantasy-predictor/internal/scoring"
)

// Phase is the draft lifecycle state
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseDrafting Phase = "drafting"
	PhaseComplete Phase = "complete"
)

// Publisher receives draft events for fan-out to clients
type Publisher interface {
	Publish(pubsub.Event)
}

// Settings is the configuration surface of one draft
type Settings struct {
	Teams     int
	Rounds    int
	RosterCap int
	UserTeam  int // 0-based seat index of the human drafter
	AutoPick  bool
	PickDelay time.Duration // <= 0 disables the internal timer; drive with Step
	Rules     map[models.Position]PositionRule
	TeamNames []string
}

// ClockInfo describes the pick currently on the clock
type ClockInfo struct {
	Team        int    `json:"team"`
	TeamName    string `json:"teamName"`
	Round       int    `json:"round"`
	PickInRound int    `json:"pickInRound"`
	Overall     int    `json:"overall"`
	IsUser      bool   `json:"isUser"`
}

// Snapshot is a consistent copy of the draft state for the display layer
type Snapshot struct {
	Phase       Phase                `json:"phase"`
	Teams       []models.TeamSummary `json:"teams"`
	Picks       []models.DraftPick   `json:"picks"`
	Available   []models.Player      `json:"available"`
	OnClock     *ClockInfo           `json:"onClock,omitempty"`
	UserTeam    int                  `json:"userTeam"`
	AutoPick    bool                 `json:"autoPick"`
	TargetPicks int                  `json:"targetPicks"`
}

// Standing is one row of the end-of-draft team ranking
type Standing struct {
	Rank          int     `json:"rank"`
	Team          int     `json:"team"`
	Name          string  `json:"name"`
	StarterPoints float64 `json:"starterPoints"`
	TotalPoints   float64 `json:"totalPoints"`
}

// Engine is the draft state machine. It exclusively owns the pick ledger,
// the available-player pool and every roster; nothing else mutates them.
type Engine struct {
	mu       sync.Mutex
	settings Settings
	strategy *Strategy
	events   Publisher

	phase     Phase
	pool      []models.Player
	available []models.Player
	rosters   []*Roster
	ledger    []models.DraftPick

	// epoch invalidates pending auto-pick timers. It advances on
	// start/reset and on every applied pick, so a timer armed for a pick
	// that has already happened (or a draft that is gone) discards itself
	// instead of running a second pacing cascade.
	epoch uint64
}

// New creates an engine in the setup phase
func New(settings Settings, strategy *Strategy, events Publisher) *Engine {
	if settings.Teams <= 0 {
		settings.Teams = 12
	}
	if settings.Rounds <= 0 {
		settings.Rounds = 15
	}
	if settings.RosterCap <= 0 {
		settings.RosterCap = settings.Rounds
	}
	if settings.Rules == nil {
		settings.Rules = DefaultRules()
	}
	if strategy == nil {
		strategy = NewStrategy(settings.Rules, nil)
	}

	e := &Engine{
		settings: settings,
		strategy: strategy,
		events:   events,
		phase:    PhaseSetup,
	}
	e.resetLocked()
	return e
}

// targetPicks is the ledger length at which the draft completes
func (e *Engine) targetPicks() int {
	return e.settings.Rounds * e.settings.Teams
}

func (e *Engine) teamName(i int) string {
	if i < len(e.settings.TeamNames) && e.settings.TeamNames[i] != "" {
		return e.settings.TeamNames[i]
	}
	if i == e.settings.UserTeam {
		return "Your Team"
	}
	return "Team " + strconv.Itoa(i+1)
}

// Start moves the draft from any phase into drafting with a fresh ledger,
// fresh rosters and the full valuated pool. An empty pool is not an error;
// it just produces an immediately complete draft.
func (e *Engine) Start(pool []models.Player) {
	e.mu.Lock()

	e.pool = make([]models.Player, len(pool))
	copy(e.pool, pool)
	e.resetLocked()
	e.phase = PhaseDrafting

	if len(e.pool) < e.targetPicks() {
		logger.Warn("Valuated pool is smaller than the pick target; draft will complete early",
			"pool", len(e.pool), "target", e.targetPicks())
	}

	e.publish(pubsub.Event{Type: "draft:start", Payload: map[string]interface{}{
		"teams":  e.settings.Teams,
		"rounds": e.settings.Rounds,
	}})

	e.checkCompleteLocked()
	e.mu.Unlock()

	e.AdvanceIfAuto()
}

// Reset returns to setup, clears the ledger and rosters, and restores the
// available pool. Calling it twice in a row is the same as once.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	e.phase = PhaseSetup
	e.publish(pubsub.Event{Type: "draft:reset"})
	e.mu.Unlock()
}

func (e *Engine) resetLocked() {
	e.epoch++
	e.ledger = nil
	e.available = make([]models.Player, len(e.pool))
	copy(e.available, e.pool)
	e.rosters = make([]*Roster, e.settings.Teams)
	for i := range e.rosters {
		e.rosters[i] = NewRoster()
	}
}

// Phase returns the current lifecycle phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// SetAutoPick toggles auto-drafting for the user's seat
func (e *Engine) SetAutoPick(enabled bool) {
	e.mu.Lock()
	e.settings.AutoPick = enabled
	e.mu.Unlock()

	if enabled {
		e.AdvanceIfAuto()
	}
}

// SetPickDelay changes the automation pacing delay
func (e *Engine) SetPickDelay(d time.Duration) {
	e.mu.Lock()
	e.settings.PickDelay = d
	e.mu.Unlock()
}

// UserPick applies the human drafter's selection. It is a logged no-op if
// it is not the user's turn, the draft is not live, or the player is not
// in the available pool.
func (e *Engine) UserPick(playerID string) bool {
	e.mu.Lock()
	if e.phase == PhaseDrafting && TeamOnClock(len(e.ledger), e.settings.Teams) != e.settings.UserTeam {
		e.mu.Unlock()
		logger.Warn("User pick attempted out of turn", "player_id", playerID)
		return false
	}
	ok := e.applyPickLocked(playerID)
	e.mu.Unlock()

	if ok {
		e.AdvanceIfAuto()
	}
	return ok
}

// ApplyPick applies a pick for whichever team is on the clock. Wrong-phase
// calls and unknown players are no-ops; they indicate a caller bug and are
// logged as such.
func (e *Engine) ApplyPick(playerID string) bool {
	e.mu.Lock()
	ok := e.applyPickLocked(playerID)
	e.mu.Unlock()

	if ok {
		e.AdvanceIfAuto()
	}
	return ok
}

func (e *Engine) applyPickLocked(playerID string) bool {
	if e.phase != PhaseDrafting {
		logger.Warn("Pick applied outside drafting phase", "phase", string(e.phase), "player_id", playerID)
		return false
	}

	idx := -1
	for i, p := range e.available {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		logger.Warn("Pick for player not in available pool", "player_id", playerID)
		return false
	}
	player := e.available[idx]

	round, pickInRound, overall, team := Slot(len(e.ledger), e.settings.Teams)
	roster := e.rosters[team]

	if rule, ok := e.settings.Rules[player.Position]; ok && roster.Count(player.Position) >= rule.Max {
		logger.Warn("Pick would exceed position maximum",
			"team", team, "position", string(player.Position), "player", player.Name)
		return false
	}
	if roster.Size() >= e.settings.RosterCap {
		logger.Warn("Pick would exceed roster cap", "team", team, "player", player.Name)
		return false
	}

	e.available = append(e.available[:idx], e.available[idx+1:]...)
	roster.Add(player)
	e.epoch++
	e.ledger = append(e.ledger, models.DraftPick{
		Overall:     overall,
		Round:       round,
		PickInRound: pickInRound,
		Team:        team,
		Player:      player,
	})

	logger.Debug("Pick applied", "overall", overall, "team", team,
		"player", player.Name, "position", string(player.Position))

	e.publish(pubsub.Event{Type: "draft:pick", Payload: map[string]interface{}{
		"overall":  overall,
		"round":    round,
		"team":     team,
		"teamName": e.teamName(team),
		"playerId": player.ID,
		"player":   player.Name,
		"position": string(player.Position),
	}})

	e.checkCompleteLocked()
	return true
}

// checkCompleteLocked transitions to complete when the ledger reaches the
// pick target, or early when the pool is exhausted (a defined terminal
// rather than a stalled draft).
func (e *Engine) checkCompleteLocked() {
	if e.phase != PhaseDrafting {
		return
	}
	if len(e.ledger) >= e.targetPicks() || len(e.available) == 0 {
		e.phase = PhaseComplete
		e.epoch++
		if len(e.ledger) < e.targetPicks() {
			logger.Warn("Draft completed early: player pool exhausted",
				"picks", len(e.ledger), "target", e.targetPicks())
		}
		e.publish(pubsub.Event{Type: "draft:complete", Payload: map[string]interface{}{
			"picks": len(e.ledger),
		}})
	}
}

// autoDue reports whether the pick on the clock belongs to automation
func (e *Engine) autoDueLocked() bool {
	if e.phase != PhaseDrafting {
		return false
	}
	team := TeamOnClock(len(e.ledger), e.settings.Teams)
	return team != e.settings.UserTeam || e.settings.AutoPick
}

// AdvanceIfAuto schedules an automated pick after the configured pacing
// delay if the pick on the clock belongs to a simulated opponent (or to
// the user with auto-pick enabled). With a non-positive delay the engine
// does not self-drive; use Step.
func (e *Engine) AdvanceIfAuto() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.settings.PickDelay <= 0 || !e.autoDueLocked() {
		return
	}

	epoch := e.epoch
	time.AfterFunc(e.settings.PickDelay, func() {
		e.stepAuto(epoch)
	})
}

// Step synchronously applies one automated pick if one is due. It returns
// false when the draft is not live or the user is on the clock without
// auto-pick.
func (e *Engine) Step() bool {
	e.mu.Lock()
	epoch := e.epoch
	e.mu.Unlock()
	return e.stepAuto(epoch)
}

func (e *Engine) stepAuto(epoch uint64) bool {
	e.mu.Lock()

	// Stale timer from before a reset or phase change: discard
	if e.epoch != epoch || !e.autoDueLocked() {
		e.mu.Unlock()
		return false
	}

	team := TeamOnClock(len(e.ledger), e.settings.Teams)
	roster := e.rosters[team]
	round := len(e.ledger)/e.settings.Teams + 1
	remaining := e.settings.Rounds - roster.Size()

	player, ok := e.strategy.Pick(e.available, roster, round, remaining)
	if !ok {
		e.checkCompleteLocked()
		e.mu.Unlock()
		return false
	}

	applied := e.applyPickLocked(player.ID)
	if !applied && e.phase == PhaseDrafting {
		// The strategy proposed an illegal pick, which only happens with
		// inconsistent position rules. End the draft rather than stall.
		logger.Error("Automated pick was refused; completing draft early",
			"team", team, "player", player.Name)
		e.phase = PhaseComplete
		e.epoch++
		e.publish(pubsub.Event{Type: "draft:complete", Payload: map[string]interface{}{
			"picks": len(e.ledger),
		}})
	}
	e.mu.Unlock()

	if applied {
		e.AdvanceIfAuto()
	}
	return applied
}

// Snapshot returns a consistent copy of the full draft state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Phase:       e.phase,
		Picks:       make([]models.DraftPick, len(e.ledger)),
		Available:   make([]models.Player, len(e.available)),
		UserTeam:    e.settings.UserTeam,
		AutoPick:    e.settings.AutoPick,
		TargetPicks: e.targetPicks(),
	}
	copy(snap.Picks, e.ledger)
	copy(snap.Available, e.available)

	snap.Teams = make([]models.TeamSummary, e.settings.Teams)
	for i, roster := range e.rosters {
		snap.Teams[i] = e.summarizeLocked(i, roster)
	}

	if e.phase == PhaseDrafting {
		round, pickInRound, overall, team := Slot(len(e.ledger), e.settings.Teams)
		snap.OnClock = &ClockInfo{
			Team:        team,
			TeamName:    e.teamName(team),
			Round:       round,
			PickInRound: pickInRound,
			Overall:     overall,
			IsUser:      team == e.settings.UserTeam,
		}
	}
	return snap
}

// Standings ranks every team by starter points, best first. Meaningful at
// completion but computable at any time.
func (e *Engine) Standings() []Standing {
	e.mu.Lock()
	defer e.mu.Unlock()

	standings := make([]Standing, e.settings.Teams)
	for i, roster := range e.rosters {
		standings[i] = Standing{
			Team:          i,
			Name:          e.teamName(i),
			StarterPoints: scoring.Round2(roster.StarterPoints()),
			TotalPoints:   scoring.Round2(roster.TotalPoints()),
		}
	}
	sort.SliceStable(standings, func(a, b int) bool {
		return standings[a].StarterPoints > standings[b].StarterPoints
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func (e *Engine) summarizeLocked(i int, roster *Roster) models.TeamSummary {
	players := make(map[models.Position][]models.Player, len(models.AllPositions))
	for _, pos := range models.AllPositions {
		players[pos] = roster.Players(pos)
	}
	return models.TeamSummary{
		Index:         i,
		Name:          e.teamName(i),
		IsUser:        i == e.settings.UserTeam,
		Players:       players,
		TotalPoints:   scoring.Round2(roster.TotalPoints()),
		StarterPoints: scoring.Round2(roster.StarterPoints()),
	}
}

func (e *Engine) publish(event pubsub.Event) {
	if e.events != nil {
		e.events.Publish(event)
	}
}
