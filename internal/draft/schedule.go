package draft

// Snake-order turn scheduling. Everything here is a pure function of the
// 0-based global pick index and the team count, so the ledger and the
// scheduler can never disagree: whose turn it is falls out of how many
// picks have already been made.

// RoundOf returns the 0-based round for a global pick index
func RoundOf(pick, teams int) int {
	return pick / teams
}

// TeamOnClock returns the acting team index for a global pick index.
// Even rounds run 0..N-1, odd rounds reverse to N-1..0.
func TeamOnClock(pick, teams int) int {
	round := pick / teams
	posInRound := pick % teams
	if round%2 == 0 {
		return posInRound
	}
	return teams - 1 - posInRound
}

// Slot expands a global pick index into its 1-based round, 1-based pick
// within the round, 1-based overall number, and acting team index.
func Slot(pick, teams int) (round, pickInRound, overall, team int) {
	return pick/teams + 1, pick%teams + 1, pick + 1, TeamOnClock(pick, teams)
}
