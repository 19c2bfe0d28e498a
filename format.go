package main

import (
	"fmt"
	"sort"
	"strings"
)

// FormatBracket renders one simulated bracket grouped by region and round,
// ending with the finalists and champion. Regions print in name order so the
// same run always renders identically.
func FormatBracket(b *Bracket) string {
	var sb strings.Builder
	layout := b.Layout

	names := make([]string, 0, len(b.Regions))
	for name := range b.Regions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		region := b.Regions[name]
		fmt.Fprintf(&sb, "\n==========%s==========\n", region.Name)
		for round := Round(1); round <= layout.RegionFinal(); round++ {
			fmt.Fprintf(&sb, "\n%s:\n", layout.Label(round))
			for _, t := range region.Rounds[round] {
				fmt.Fprintf(&sb, "%s\n", t.Name)
			}
		}
	}

	sb.WriteString("\n==========Championship==========\n")
	for _, t := range b.Finalists {
		fmt.Fprintf(&sb, "%s\n", t.Name)
	}
	fmt.Fprintf(&sb, "\nChampion: %s\n", b.Champion.Name)
	return sb.String()
}

// FormatChampionOdds renders the championship-odds leader board.
func FormatChampionOdds(t *ChampionTally, minPct float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Percent chance of winning tournament (%d runs):\n", t.Runs)
	for _, row := range t.Leaders(minPct) {
		fmt.Fprintf(&sb, "  %s: %.1f%%\n", row.Name, row.Percent)
	}
	return sb.String()
}

// FormatConditioned renders the conditional bracket distribution: per region
// and round, how often each team survived among the accepted runs, then the
// finalist tallies.
func FormatConditioned(t *ConditionedTally, layout BracketLayout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bracket distribution given champion %s (%d accepted runs, %d total attempts):\n",
		t.Desired, t.Accepted, t.Attempts)

	regions := make([]string, 0, len(t.Survivors))
	for name := range t.Survivors {
		regions = append(regions, name)
	}
	sort.Strings(regions)

	for _, name := range regions {
		byRound := t.Survivors[name]
		fmt.Fprintf(&sb, "\n==========%s==========\n", name)
		for round := Round(1); round <= layout.RegionFinal(); round++ {
			counts := byRound[round]
			if len(counts) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "\n%s:\n", layout.Label(round))
			for _, row := range sortedCounts(counts) {
				fmt.Fprintf(&sb, "  %s: %.1f%%\n", row.name, pct(row.count, t.Accepted))
			}
		}
	}

	sb.WriteString("\n==========Finalists==========\n")
	for _, row := range sortedCounts(t.Finalists) {
		fmt.Fprintf(&sb, "  %s: %.1f%%\n", row.name, pct(row.count, t.Accepted))
	}
	return sb.String()
}

type countRow struct {
	name  string
	count int
}

func sortedCounts(counts map[string]int) []countRow {
	rows := make([]countRow, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, countRow{name, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].name < rows[j].name
	})
	return rows
}

func pct(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}
