package main

import (
	"errors"
	"math/rand"
	"sort"
)

// ── Matchup resolution ──────────────────────────────────────────────

// pickWinner resolves one matchup at round r. The two conditional round odds
// span an odds range; a uniform draw over it decides the winner, so only the
// relative magnitude of the two probabilities matters. The loser's seed is
// propagated onto the winner when it is stronger, keeping the bracket slot's
// reseeding value with the best seed that has appeared in it.
func pickWinner(a, b *Team, r Round, rng *rand.Rand) *Team {
	oddsRange := a.Odds.Conditional(r) + b.Odds.Conditional(r)
	winner, loser := a, b
	if rng.Float64()*oddsRange > a.Odds.Conditional(r) {
		winner, loser = b, a
	}
	if loser.Seed < winner.seedSlot {
		winner.seedSlot = loser.Seed
	}
	return winner
}

// ── Region resolution ───────────────────────────────────────────────

// simulate resolves the region from the full field down to one winner,
// recording the survivors of every round. Round 1 is the play-in stage: each
// seed held by two teams runs a matchup, singleton seeds advance on a bye.
// Later rounds pair the strongest remaining seed slot against the weakest.
func (r *Region) simulate(layout BracketLayout, rng *rand.Rand) error {
	r.Rounds = make(map[Round][]*Team, layout.RegionRounds)
	for _, t := range r.Teams {
		t.seedSlot = t.Seed
	}

	bySeed := make(map[int][]*Team)
	var seeds []int
	for _, t := range r.Teams {
		if _, ok := bySeed[t.Seed]; !ok {
			seeds = append(seeds, t.Seed)
		}
		bySeed[t.Seed] = append(bySeed[t.Seed], t)
	}
	playIn := make([]*Team, 0, len(seeds))
	for _, seed := range seeds {
		group := bySeed[seed]
		switch len(group) {
		case 1:
			playIn = append(playIn, group[0])
		case 2:
			playIn = append(playIn, pickWinner(group[0], group[1], 1, rng))
		default:
			return structuralErrorf("region %s: %d teams at seed %d, want 1 or 2",
				r.Name, len(group), seed)
		}
	}
	r.Rounds[1] = playIn

	for round := Round(2); round <= layout.RegionFinal(); round++ {
		prev := append([]*Team(nil), r.Rounds[round-1]...)
		if len(prev)%2 != 0 {
			return structuralErrorf("region %s: %d survivors entering %s, want an even field",
				r.Name, len(prev), layout.Label(round))
		}
		sort.SliceStable(prev, func(i, j int) bool {
			return prev[i].seedSlot < prev[j].seedSlot
		})
		half := len(prev) / 2
		high, low := prev[:half], prev[half:]
		sort.SliceStable(low, func(i, j int) bool {
			return low[i].seedSlot > low[j].seedSlot
		})

		cur := make([]*Team, 0, half)
		for i := range high {
			cur = append(cur, pickWinner(high[i], low[i], round, rng))
		}
		// Recorded survivor lists read best-seed-first; pairing above keys on
		// seed slots, not this display order.
		sort.SliceStable(cur, func(i, j int) bool {
			return cur[i].Seed < cur[j].Seed
		})
		r.Rounds[round] = cur
	}

	if n := len(r.Rounds[layout.RegionFinal()]); n != 1 {
		return structuralErrorf("region %s: %d survivors after %s, want exactly 1",
			r.Name, n, layout.Label(layout.RegionFinal()))
	}
	return nil
}

// ── Bracket resolution ──────────────────────────────────────────────

// simulate resolves every region, the two semifinal matchups between region
// winners, and the final. Regions resolve in name order so a fixed seed
// consumes the RNG identically on every run. Mutates the receiver; callers
// that need a pristine template must simulate a clone.
func (b *Bracket) simulate(rng *rand.Rand) error {
	layout := b.Layout

	paired := make(map[string]bool, 4)
	for _, pair := range layout.Semifinals {
		for _, name := range pair {
			paired[name] = true
		}
	}

	names := make([]string, 0, len(b.Regions))
	for name := range b.Regions {
		names = append(names, name)
	}
	sort.Strings(names)

	winners := make(map[string]*Team, len(b.Regions))
	for _, name := range names {
		if !paired[name] {
			return structuralErrorf("region %q not recognized by the semifinal pairings", name)
		}
		region := b.Regions[name]
		if err := region.simulate(layout, rng); err != nil {
			return err
		}
		winners[name] = region.Winner(layout.RegionFinal())
	}

	finalists := make([]*Team, 0, 2)
	for _, pair := range layout.Semifinals {
		a, ok := winners[pair[0]]
		if !ok {
			return structuralErrorf("region %q named in semifinal pairing but absent from dataset", pair[0])
		}
		c, ok := winners[pair[1]]
		if !ok {
			return structuralErrorf("region %q named in semifinal pairing but absent from dataset", pair[1])
		}
		finalists = append(finalists, pickWinner(a, c, layout.SemifinalRound(), rng))
	}
	b.Finalists = finalists
	b.Champion = pickWinner(finalists[0], finalists[1], layout.FinalRound(), rng)
	return nil
}

// snapshot freezes the completed run into a name-only result that is safe to
// hand across goroutines.
func (b *Bracket) snapshot() RunResult {
	survivors := make(map[string]map[Round][]string, len(b.Regions))
	for name, region := range b.Regions {
		rounds := make(map[Round][]string, len(region.Rounds))
		for round, teams := range region.Rounds {
			names := make([]string, len(teams))
			for i, t := range teams {
				names[i] = t.Name
			}
			rounds[round] = names
		}
		survivors[name] = rounds
	}
	return RunResult{
		Survivors: survivors,
		Finalists: [2]string{b.Finalists[0].Name, b.Finalists[1].Name},
		Champion:  b.Champion.Name,
	}
}

// ── Single runs ─────────────────────────────────────────────────────

// errRunCancelled aborts a conditioned search whose aggregation already
// stopped; it never escapes the worker pool.
var errRunCancelled = errors.New("run cancelled")

// runOnce resolves one full tournament on a fresh clone of the template.
func runOnce(template *Bracket, rng *rand.Rand) (RunResult, error) {
	b := template.clone()
	if err := b.simulate(rng); err != nil {
		return RunResult{}, err
	}
	return b.snapshot(), nil
}

// runUntilChampion re-simulates until a run crowns the desired champion,
// spending at most budget attempts. This is a deliberate search over
// outcomes, not fault recovery; infeasible champions surface as an
// ExhaustionError instead of looping forever.
func runUntilChampion(template *Bracket, desired string, budget int, rng *rand.Rand, cancelled func() bool) (RunResult, int, error) {
	for attempt := 1; attempt <= budget; attempt++ {
		if cancelled != nil && cancelled() {
			return RunResult{}, attempt - 1, errRunCancelled
		}
		res, err := runOnce(template, rng)
		if err != nil {
			return RunResult{}, attempt, err
		}
		if res.Champion == desired {
			return res, attempt, nil
		}
	}
	return RunResult{}, budget, &ExhaustionError{Desired: desired, Attempts: budget}
}
