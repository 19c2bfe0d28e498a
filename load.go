package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// belowThresholdMarker is how the source data writes probabilities too small
// to publish. It maps to a small positive constant rather than zero so the
// matchup odds range stays well-defined.
const (
	belowThresholdMarker = "<0.1"
	belowThresholdOdds   = 0.0001
)

// LoadBracket reads a dataset from path and assembles the bracket template.
// CSV is the native format; a .json extension selects the JSON loader.
func LoadBracket(path string, layout BracketLayout) (*Bracket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSONBracket(string(data), layout)
	}
	return parseCSVBracket(string(data), layout)
}

func parseCSVBracket(data string, layout BracketLayout) (*Bracket, error) {
	r := csv.NewReader(strings.NewReader(data))

	// Read the header before imposing a field count, so a header with the
	// wrong number of columns still reports as a header mismatch rather
	// than a generic parse failure.
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &HeaderMismatchError{Got: "", Want: layout.HeaderLine()}
	}
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if got := strings.Join(header, ","); got != layout.HeaderLine() {
		return nil, &HeaderMismatchError{Got: got, Want: layout.HeaderLine()}
	}
	r.FieldsPerRecord = 3 + layout.NumRounds()

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	teams := make([]*Team, 0, len(records))
	for i, rec := range records {
		team, err := parseTeamRecord(i+2, rec, layout)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return buildBracket(teams, layout), nil
}

// parseTeamRecord converts one data row into a Team. line is 1-based within
// the source file and only used for error reporting.
func parseTeamRecord(line int, rec []string, layout BracketLayout) (*Team, error) {
	region := strings.TrimSpace(rec[0])
	if region == "" {
		return nil, &MalformedInputError{Line: line, Field: "region", Value: rec[0]}
	}
	seed, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil || seed <= 0 {
		return nil, &MalformedInputError{Line: line, Field: "seed", Value: rec[1]}
	}
	name := strings.TrimSpace(rec[2])
	if name == "" {
		return nil, &MalformedInputError{Line: line, Field: "team", Value: rec[2]}
	}

	var vals [MaxRounds]float64
	var present [MaxRounds]bool
	for i, field := range rec[3 : 3+layout.NumRounds()] {
		field = strings.TrimSpace(field)
		switch {
		case field == "":
			// eliminated before this round in the source data
		case field == belowThresholdMarker:
			vals[i] = belowThresholdOdds
			present[i] = true
		default:
			p, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &MalformedInputError{
					Line: line, Field: layout.RoundNames[i], Value: field,
				}
			}
			vals[i] = p
			present[i] = true
		}
	}

	return &Team{
		Name:     name,
		Region:   region,
		Seed:     seed,
		Odds:     newOddsTable(vals, present),
		seedSlot: seed,
	}, nil
}

// parseJSONBracket reads the same records from a JSON document of the form
// {"teams": [{"region": ..., "seed": ..., "team": ..., "odds": [...]}]}.
// Odds entries may be numbers, the below-threshold marker string, or null.
func parseJSONBracket(doc string, layout BracketLayout) (*Bracket, error) {
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("parse dataset: invalid JSON")
	}
	arr := gjson.Get(doc, "teams")
	if !arr.Exists() || !arr.IsArray() {
		return nil, &HeaderMismatchError{Got: "<no teams array>", Want: `{"teams": [...]}`}
	}

	var teams []*Team
	var firstErr error
	line := 0
	arr.ForEach(func(_, v gjson.Result) bool {
		line++
		team, err := parseTeamJSON(line, v, layout)
		if err != nil {
			firstErr = err
			return false
		}
		teams = append(teams, team)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return buildBracket(teams, layout), nil
}

func parseTeamJSON(line int, v gjson.Result, layout BracketLayout) (*Team, error) {
	region := v.Get("region").String()
	if region == "" {
		return nil, &MalformedInputError{Line: line, Field: "region", Value: v.Get("region").Raw}
	}
	seed := int(v.Get("seed").Int())
	if seed <= 0 {
		return nil, &MalformedInputError{Line: line, Field: "seed", Value: v.Get("seed").Raw}
	}
	name := v.Get("team").String()
	if name == "" {
		return nil, &MalformedInputError{Line: line, Field: "team", Value: v.Get("team").Raw}
	}

	var vals [MaxRounds]float64
	var present [MaxRounds]bool
	var oddsErr error
	i := 0
	v.Get("odds").ForEach(func(_, o gjson.Result) bool {
		if i >= layout.NumRounds() {
			oddsErr = &MalformedInputError{Line: line, Field: "odds", Value: o.Raw}
			return false
		}
		switch o.Type {
		case gjson.Null:
			// eliminated before this round
		case gjson.Number:
			vals[i] = o.Float()
			present[i] = true
		case gjson.String:
			if o.String() != belowThresholdMarker {
				oddsErr = &MalformedInputError{
					Line: line, Field: layout.RoundNames[i], Value: o.String(),
				}
				return false
			}
			vals[i] = belowThresholdOdds
			present[i] = true
		default:
			oddsErr = &MalformedInputError{
				Line: line, Field: layout.RoundNames[i], Value: o.Raw,
			}
			return false
		}
		i++
		return true
	})
	if oddsErr != nil {
		return nil, oddsErr
	}

	return &Team{
		Name:     name,
		Region:   region,
		Seed:     seed,
		Odds:     newOddsTable(vals, present),
		seedSlot: seed,
	}, nil
}

// buildBracket groups teams by region, each region's field sorted by seed.
func buildBracket(teams []*Team, layout BracketLayout) *Bracket {
	regions := make(map[string]*Region)
	for _, t := range teams {
		r, ok := regions[t.Region]
		if !ok {
			r = &Region{Name: t.Region}
			regions[t.Region] = r
		}
		r.Teams = append(r.Teams, t)
	}
	for _, r := range regions {
		sort.SliceStable(r.Teams, func(i, j int) bool {
			return r.Teams[i].Seed < r.Teams[j].Seed
		})
	}
	return &Bracket{Layout: layout, Regions: regions}
}
