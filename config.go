package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries the simulation run parameters. Adjust these to trade
// accuracy for wall time.
type Config struct {
	// ChampionRuns is the number of simulations in championship-odds mode.
	ChampionRuns int
	// AcceptedRuns is how many runs must produce the desired champion in
	// conditioned mode before tallying stops.
	AcceptedRuns int
	// AttemptBudget caps how many simulations a single conditioned work unit
	// may burn searching for the desired champion before giving up with an
	// ExhaustionError.
	AttemptBudget int
	// Workers is the worker pool size; 0 means GOMAXPROCS.
	Workers int
	// Seed fixes the base RNG seed; 0 derives one from the clock.
	Seed int64
	// MinReportPct is the championship-odds report cutoff in percent.
	MinReportPct float64
}

// DefaultConfig returns the run parameters of the reference dataset.
func DefaultConfig() Config {
	return Config{
		ChampionRuns:  20000,
		AcceptedRuns:  10000,
		AttemptBudget: 100000,
		MinReportPct:  1.0,
	}
}

// Verbose controls whether detailed run progress is printed to stderr.
var Verbose bool

// BracketLayout describes the shape of the bracket: one display label per
// round, how many of those rounds are played inside a region, and which
// region winners meet in the two semifinal matchups. The last two labels
// always belong to the semifinal and final rounds.
type BracketLayout struct {
	RoundNames   []string   `yaml:"rounds"`
	RegionRounds int        `yaml:"region_rounds"`
	Semifinals   [][]string `yaml:"semifinals"`
}

// DefaultLayout reproduces the reference March-Madness bracket.
func DefaultLayout() BracketLayout {
	return BracketLayout{
		RoundNames: []string{
			"FIRST FOUR", "ROUND OF 32", "ROUND OF 16",
			"ELITE 8", "FINAL 4", "FINALS", "CHAMPIONS",
		},
		RegionRounds: 5,
		Semifinals: [][]string{
			{"Midwest", "West"},
			{"South", "East"},
		},
	}
}

// LoadLayout reads a YAML bracket layout from path.
func LoadLayout(path string) (BracketLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BracketLayout{}, fmt.Errorf("read %s: %w", path, err)
	}
	var l BracketLayout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return BracketLayout{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return BracketLayout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// Validate checks the layout invariants the simulation depends on.
func (l BracketLayout) Validate() error {
	if l.RegionRounds < 2 {
		return fmt.Errorf("region_rounds must be >= 2, got %d", l.RegionRounds)
	}
	if len(l.RoundNames) != l.RegionRounds+2 {
		return fmt.Errorf("want %d round names (region_rounds + semifinal + final), got %d",
			l.RegionRounds+2, len(l.RoundNames))
	}
	if len(l.RoundNames) > MaxRounds {
		return fmt.Errorf("at most %d rounds supported, got %d", MaxRounds, len(l.RoundNames))
	}
	if len(l.Semifinals) != 2 {
		return fmt.Errorf("want exactly 2 semifinal pairings, got %d", len(l.Semifinals))
	}
	seen := make(map[string]bool, 4)
	for _, pair := range l.Semifinals {
		if len(pair) != 2 {
			return fmt.Errorf("semifinal pairing %v must name exactly 2 regions", pair)
		}
		for _, name := range pair {
			if name == "" {
				return fmt.Errorf("semifinal pairing %v has an empty region name", pair)
			}
			if seen[name] {
				return fmt.Errorf("region %q appears in more than one semifinal slot", name)
			}
			seen[name] = true
		}
	}
	return nil
}

// NumRounds is the total round count, region rounds plus semifinal and final.
func (l BracketLayout) NumRounds() int {
	return len(l.RoundNames)
}

// RegionFinal is the round whose sole survivor wins a region.
func (l BracketLayout) RegionFinal() Round {
	return Round(l.RegionRounds)
}

// SemifinalRound is the round index used when region winners meet.
func (l BracketLayout) SemifinalRound() Round {
	return Round(l.RegionRounds + 1)
}

// FinalRound is the round index of the championship matchup.
func (l BracketLayout) FinalRound() Round {
	return Round(l.RegionRounds + 2)
}

// Label returns the display name of round r.
func (l BracketLayout) Label(r Round) string {
	return l.RoundNames[int(r)-1]
}

// HeaderLine is the exact header a CSV dataset for this layout must carry.
func (l BracketLayout) HeaderLine() string {
	return "REGION,SEED,TEAM," + strings.Join(l.RoundNames, ",")
}
