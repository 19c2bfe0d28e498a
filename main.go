//go:build !lambda

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// OddsOutput is the JSON-serializable championship-odds report.
type OddsOutput struct {
	Date    string         `json:"date"`
	Runs    int            `json:"runs"`
	Leaders []ChampionOdds `json:"leaders"`
}

// ConditionedOutput is the JSON-serializable conditional-distribution report.
type ConditionedOutput struct {
	Date      string                              `json:"date"`
	Desired   string                              `json:"desired"`
	Accepted  int                                 `json:"accepted"`
	Attempts  int                                 `json:"attempts"`
	Finalists map[string]int                      `json:"finalists"`
	Survivors map[string]map[Round]map[string]int `json:"survivors"`
}

const usage = `Usage: quickpick [flags]

Generates "quick pick" tournament brackets from per-round cumulative
advancement probabilities (as in, but not necessarily, 538-style data).
The input is CSV with a fixed header, or the same records as JSON.

Modes (pick at most one):
  default        simulate one full bracket and write it to the output file
  -c             run many simulations and print championship odds
  -f CHAMPION    tally bracket distributions over runs won by CHAMPION

Flags:
`

func main() {
	input := flag.String("i", "data.csv", "input dataset (.csv or .json)")
	output := flag.String("o", "output.txt", "output file for single-bracket mode")
	championMode := flag.Bool("c", false, "championship-odds mode")
	findChampion := flag.String("f", "", "conditioned mode: desired champion name")
	bracketPath := flag.String("bracket", "", "YAML bracket layout override")
	seed := flag.Int64("seed", 0, "base RNG seed (0 = time-based)")
	jsonOut := flag.Bool("json", false, "machine-readable output for -c and -f modes")
	verbose := flag.Bool("verbose", false, "print detailed progress to stderr")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	Verbose = *verbose

	if *championMode && *findChampion != "" {
		fatal(fmt.Errorf("-c and -f are mutually exclusive"))
	}

	layout := DefaultLayout()
	if *bracketPath != "" {
		l, err := LoadLayout(*bracketPath)
		if err != nil {
			fatal(err)
		}
		layout = l
	}

	bracket, err := LoadBracket(*input, layout)
	if err != nil {
		fatal(err)
	}
	teams := 0
	for _, r := range bracket.Regions {
		teams += len(r.Teams)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d teams in %d regions from %s\n",
		teams, len(bracket.Regions), *input)

	cfg := DefaultConfig()
	cfg.Seed = *seed

	switch {
	case *championMode:
		runChampionOdds(bracket, cfg, *jsonOut)
	case *findChampion != "":
		runConditioned(bracket, *findChampion, cfg, *jsonOut)
	default:
		runSingle(bracket, cfg, *output)
	}
}

func runSingle(template *Bracket, cfg Config, outPath string) {
	rng := rand.New(rand.NewSource(baseSeed(cfg)))
	b := template.clone()
	if err := b.simulate(rng); err != nil {
		fatal(err)
	}
	text := FormatBracket(b)
	fmt.Print(text)

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Wrote bracket to %s\n", outPath)
	}
}

func runChampionOdds(template *Bracket, cfg Config, jsonOut bool) {
	tally, err := SimulateChampionOdds(template, cfg)
	if err != nil {
		fatal(err)
	}

	if jsonOut {
		out := OddsOutput{
			Date:    time.Now().UTC().Format(time.RFC3339),
			Runs:    tally.Runs,
			Leaders: tally.Leaders(cfg.MinReportPct),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(out)
		return
	}
	fmt.Print(FormatChampionOdds(tally, cfg.MinReportPct))
}

func runConditioned(template *Bracket, desired string, cfg Config, jsonOut bool) {
	tally, err := SimulateConditioned(template, desired, cfg)
	if err != nil {
		fatal(err)
	}

	if jsonOut {
		out := ConditionedOutput{
			Date:      time.Now().UTC().Format(time.RFC3339),
			Desired:   tally.Desired,
			Accepted:  tally.Accepted,
			Attempts:  tally.Attempts,
			Finalists: tally.Finalists,
			Survivors: tally.Survivors,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(out)
		return
	}
	fmt.Print(FormatConditioned(tally, template.Layout))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
