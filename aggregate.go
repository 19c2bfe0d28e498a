package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ── Progress reporting ──────────────────────────────────────────────

// reporter prints throttled progress lines for long aggregation runs.
type reporter struct {
	task     string
	start    time.Time
	last     time.Time
	interval time.Duration
}

func newReporter(task string) *reporter {
	now := time.Now()
	fmt.Fprintf(os.Stderr, "[run] starting %s\n", task)
	return &reporter{task: task, start: now, last: now, interval: time.Second}
}

func (r *reporter) report(n int) {
	if time.Since(r.last) < r.interval {
		return
	}
	r.last = time.Now()
	fmt.Fprintf(os.Stderr, "[run] completed %d simulation runs\n", n)
}

func (r *reporter) done(n int) {
	fmt.Fprintf(os.Stderr, "[run] %s done: %d runs in %.2fs\n",
		r.task, n, time.Since(r.start).Seconds())
}

func workerCount(cfg Config) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func baseSeed(cfg Config) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// ── Championship odds (unconditioned) ───────────────────────────────

// ChampionTally aggregates champion counts over many independent runs.
type ChampionTally struct {
	Runs   int
	Counts map[string]int
}

// ChampionOdds is one row of the championship-odds report.
type ChampionOdds struct {
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	Percent float64 `json:"percent"`
}

// Leaders returns teams whose championship frequency is at least minPct
// percent of runs, sorted by frequency descending.
func (t *ChampionTally) Leaders(minPct float64) []ChampionOdds {
	if t.Runs == 0 {
		return nil
	}
	out := make([]ChampionOdds, 0, len(t.Counts))
	for name, wins := range t.Counts {
		pct := float64(wins) * 100 / float64(t.Runs)
		if pct >= minPct {
			out = append(out, ChampionOdds{Name: name, Wins: wins, Percent: pct})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SimulateChampionOdds fans cfg.ChampionRuns independent runs over a fixed
// worker pool and tallies who won each one. Workers never share bracket
// state: every run resolves its own clone, and the merge is a plain counter
// increment at the single consumer below, so completion order is irrelevant.
func SimulateChampionOdds(template *Bracket, cfg Config) (*ChampionTally, error) {
	numWorkers := workerCount(cfg)
	seed := baseSeed(cfg)

	jobCh := make(chan int, cfg.ChampionRuns)
	for i := 0; i < cfg.ChampionRuns; i++ {
		jobCh <- i
	}
	close(jobCh)

	type runOut struct {
		champion string
		err      error
	}
	resultCh := make(chan runOut, numWorkers*4)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(w) + 1))
			for range jobCh {
				res, err := runOnce(template, rng)
				resultCh <- runOut{champion: res.Champion, err: err}
			}
		}(w)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	prog := newReporter(fmt.Sprintf("%d championship-odds simulations", cfg.ChampionRuns))
	tally := &ChampionTally{Counts: make(map[string]int)}
	var firstErr error
	for out := range resultCh {
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		tally.Runs++
		tally.Counts[out.champion]++
		prog.report(tally.Runs)
	}
	prog.done(tally.Runs)
	if Verbose {
		fmt.Fprintf(os.Stderr, "[verbose] %d distinct champions across %d runs\n",
			len(tally.Counts), tally.Runs)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return tally, nil
}

// ── Conditioned simulation ──────────────────────────────────────────

// ConditionedTally aggregates, over runs that crowned the desired champion,
// how often each team survived each round and how often each team reached
// the final.
type ConditionedTally struct {
	Desired  string
	Accepted int
	// Attempts counts every simulation spent, including discarded runs.
	Attempts  int
	Survivors map[string]map[Round]map[string]int
	Finalists map[string]int
}

func (t *ConditionedTally) merge(res RunResult) {
	t.Accepted++
	for region, rounds := range res.Survivors {
		byRound, ok := t.Survivors[region]
		if !ok {
			byRound = make(map[Round]map[string]int, len(rounds))
			t.Survivors[region] = byRound
		}
		for round, names := range rounds {
			counts, ok := byRound[round]
			if !ok {
				counts = make(map[string]int)
				byRound[round] = counts
			}
			for _, name := range names {
				counts[name]++
			}
		}
	}
	for _, name := range res.Finalists {
		t.Finalists[name]++
	}
}

// SimulateConditioned keeps launching runs until cfg.AcceptedRuns of them
// crown the desired champion, then reports the conditional survivor
// distribution of those accepted runs. Each work unit searches independently
// under cfg.AttemptBudget; the first unit to exhaust its budget aborts the
// whole aggregation with an ExhaustionError.
func SimulateConditioned(template *Bracket, desired string, cfg Config) (*ConditionedTally, error) {
	numWorkers := workerCount(cfg)
	seed := baseSeed(cfg)

	jobCh := make(chan int, cfg.AcceptedRuns)
	for i := 0; i < cfg.AcceptedRuns; i++ {
		jobCh <- i
	}
	close(jobCh)

	type unitOut struct {
		res      RunResult
		attempts int
		err      error
	}
	resultCh := make(chan unitOut, numWorkers)

	// Set once the aggregation is doomed; in-flight search loops poll it so
	// an infeasible target fails in bounded time instead of budget×units.
	var stop atomic.Bool

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(w) + 1))
			for range jobCh {
				res, attempts, err := runUntilChampion(template, desired, cfg.AttemptBudget, rng, stop.Load)
				resultCh <- unitOut{res: res, attempts: attempts, err: err}
			}
		}(w)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	prog := newReporter(fmt.Sprintf("conditioned simulations (champion %s)", desired))
	tally := &ConditionedTally{
		Desired:   desired,
		Survivors: make(map[string]map[Round]map[string]int),
		Finalists: make(map[string]int),
	}
	var firstErr error
	for out := range resultCh {
		tally.Attempts += out.attempts
		if out.err != nil {
			if !errors.Is(out.err, errRunCancelled) && firstErr == nil {
				firstErr = out.err
				stop.Store(true)
			}
			continue
		}
		tally.merge(out.res)
		prog.report(tally.Accepted)
	}
	prog.done(tally.Accepted)
	if Verbose && tally.Attempts > 0 {
		fmt.Fprintf(os.Stderr, "[verbose] accepted %d of %d attempts (%.2f%%)\n",
			tally.Accepted, tally.Attempts, float64(tally.Accepted)*100/float64(tally.Attempts))
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return tally, nil
}
