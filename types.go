package main

import "fmt"

// Round indexes one stage of the tournament, counting from 1 like the input
// columns. The constants name the stages of the reference bracket; display
// labels live in BracketLayout so alternative datasets can rename them.
type Round int

const (
	FirstFour Round = iota + 1
	RoundOf32
	RoundOf16
	Elite8
	Final4
	Finals
	Champions
)

// MaxRounds is the number of probability columns a team record may carry.
const MaxRounds = 7

// OddsTable holds one team's per-round advancement probabilities. The
// independent values come straight from the input; the conditional values
// are derived once at load time and are what every matchup draw consumes.
type OddsTable struct {
	independent [MaxRounds]float64
	present     [MaxRounds]bool
	conditional [MaxRounds]float64
}

// newOddsTable derives conditional round odds from the cumulative input odds:
// conditional[i] = independent[i] / independent[i-1]. A round whose previous
// round has no value keeps its independent value unchanged, which is how the
// source data represents teams that start later or were already eliminated.
func newOddsTable(vals [MaxRounds]float64, present [MaxRounds]bool) OddsTable {
	t := OddsTable{independent: vals, present: present}
	for i := 0; i < MaxRounds; i++ {
		if !present[i] {
			continue
		}
		if i == 0 || !present[i-1] || vals[i-1] == 0 {
			t.conditional[i] = vals[i]
			continue
		}
		t.conditional[i] = vals[i] / vals[i-1]
	}
	return t
}

// Conditional returns the probability of winning a matchup round r given the
// team already reached it. Zero for rounds the input never valued.
func (t *OddsTable) Conditional(r Round) float64 {
	return t.conditional[r-1]
}

// Independent reports the raw input probability for round r and whether the
// input carried a value at all.
func (t *OddsTable) Independent(r Round) (float64, bool) {
	return t.independent[r-1], t.present[r-1]
}

// Team is one tournament entrant. Name, Region, Seed and Odds are fixed at
// load time; seedSlot is per-run pairing state (see pickWinner) and only ever
// mutated on a copy produced by clone.
type Team struct {
	Name   string
	Region string
	Seed   int
	Odds   OddsTable

	// seedSlot is the seed currently representing this team's bracket slot.
	// It starts at Seed and inherits a beaten opponent's stronger seed, so
	// reseeding in later rounds follows the best seed seen in the slot.
	seedSlot int
}

func (t *Team) clone() *Team {
	c := *t
	c.seedSlot = c.Seed
	return &c
}

// Region is one sub-bracket. Teams is the full field sorted by seed; Rounds
// records the surviving teams per round for the most recent simulation.
type Region struct {
	Name   string
	Teams  []*Team
	Rounds map[Round][]*Team
}

func (r *Region) clone() *Region {
	teams := make([]*Team, len(r.Teams))
	for i, t := range r.Teams {
		teams[i] = t.clone()
	}
	return &Region{Name: r.Name, Teams: teams}
}

// Winner returns the sole survivor of the region's final round, or nil if the
// region has not been simulated.
func (r *Region) Winner(finalRound Round) *Team {
	if len(r.Rounds[finalRound]) != 1 {
		return nil
	}
	return r.Rounds[finalRound][0]
}

// Bracket is the whole tournament: all regions plus, after a simulation, the
// two finalists and the champion. The bracket built by the loader acts as an
// immutable template; every run resolves its own clone.
type Bracket struct {
	Layout    BracketLayout
	Regions   map[string]*Region
	Finalists []*Team
	Champion  *Team
}

func (b *Bracket) clone() *Bracket {
	regions := make(map[string]*Region, len(b.Regions))
	for name, r := range b.Regions {
		regions[name] = r.clone()
	}
	return &Bracket{Layout: b.Layout, Regions: regions}
}

// RunResult is the immutable, name-only snapshot of one completed run. It is
// what crosses goroutine boundaries during aggregation; no Team pointers leak
// out of the run that produced them.
type RunResult struct {
	Survivors map[string]map[Round][]string
	Finalists [2]string
	Champion  string
}

// ── Error taxonomy ──────────────────────────────────────────────────

// HeaderMismatchError reports an input source whose header line does not
// match the bracket layout's required schema.
type HeaderMismatchError struct {
	Got  string
	Want string
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("header %q does not match expected %q", e.Got, e.Want)
}

// MalformedInputError reports a team record field that is neither empty, a
// below-threshold marker, nor a parseable value.
type MalformedInputError struct {
	Line  int
	Field string
	Value string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("line %d: malformed %s field %q", e.Line, e.Field, e.Value)
}

// StructuralError reports a bracket shape that violates the simulation's
// invariants: wrong team counts per seed, odd survivor fields, or region
// names outside the configured semifinal pairings. It indicates bad input
// data, not a simulation fault.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "bracket structure: " + e.Msg
}

func structuralErrorf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// ExhaustionError reports that a conditioned-mode search spent its attempt
// budget without producing the desired champion often enough.
type ExhaustionError struct {
	Desired  string
	Attempts int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("no %q champion within %d attempts", e.Desired, e.Attempts)
}
