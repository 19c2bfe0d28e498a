package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayoutValidate(t *testing.T) {
	t.Parallel()
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*BracketLayout)
	}{
		{"too few region rounds", func(l *BracketLayout) { l.RegionRounds = 1 }},
		{"name count mismatch", func(l *BracketLayout) { l.RoundNames = l.RoundNames[:4] }},
		{"one semifinal pairing", func(l *BracketLayout) { l.Semifinals = l.Semifinals[:1] }},
		{"three-region pairing", func(l *BracketLayout) {
			l.Semifinals[0] = []string{"Midwest", "West", "South"}
		}},
		{"duplicate region", func(l *BracketLayout) {
			l.Semifinals[1] = []string{"Midwest", "East"}
		}},
		{"empty region name", func(l *BracketLayout) {
			l.Semifinals[1] = []string{"", "East"}
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			layout := DefaultLayout()
			tc.mutate(&layout)
			if err := layout.Validate(); err == nil {
				t.Error("Validate passed, want an error")
			}
		})
	}
}

func TestLayoutRounds(t *testing.T) {
	t.Parallel()
	layout := DefaultLayout()
	if got := layout.NumRounds(); got != 7 {
		t.Errorf("NumRounds = %d, want 7", got)
	}
	if layout.RegionFinal() != Final4 || layout.SemifinalRound() != Finals || layout.FinalRound() != Champions {
		t.Errorf("round positions = %d/%d/%d, want %d/%d/%d",
			layout.RegionFinal(), layout.SemifinalRound(), layout.FinalRound(),
			Final4, Finals, Champions)
	}
	if got := layout.Label(Elite8); got != "ELITE 8" {
		t.Errorf("Label(Elite8) = %q, want ELITE 8", got)
	}
}

func TestLayoutHeaderLine(t *testing.T) {
	t.Parallel()
	want := "REGION,SEED,TEAM,FIRST FOUR,ROUND OF 32,ROUND OF 16,ELITE 8,FINAL 4,FINALS,CHAMPIONS"
	if got := DefaultLayout().HeaderLine(); got != want {
		t.Errorf("HeaderLine = %q, want %q", got, want)
	}
}

func TestLoadLayout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	good := filepath.Join(dir, "layout.yaml")
	doc := `rounds: [OPENER, "REGION FINAL", SEMIFINAL, FINAL]
region_rounds: 2
semifinals:
  - [North, South]
  - [East, West]
`
	if err := os.WriteFile(good, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	layout, err := LoadLayout(good)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if layout.Label(1) != "OPENER" || layout.RegionFinal() != 2 {
		t.Errorf("loaded layout = %+v", layout)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("rounds: [ONLY]\nregion_rounds: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayout(bad); err == nil {
		t.Error("invalid layout loaded, want an error")
	}
	if _, err := LoadLayout(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("missing layout file loaded, want an error")
	}
}
