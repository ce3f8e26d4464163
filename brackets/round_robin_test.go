package brackets

import (
	"fmt"
	"testing"

	"github.com/moltblox/tournament-engine/models"
)

func TestRoundRobinEveryPairExactlyOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 8} {
		t.Run(fmt.Sprintf("%d_players", n), func(t *testing.T) {
			b, err := Generate(models.FormatRoundRobin, GenerateParams{Seeded: testSeeds(n)})
			if err != nil {
				t.Fatal(err)
			}

			wantRounds := n - 1
			if n%2 != 0 {
				wantRounds = n
			}
			if len(b.Rounds) != wantRounds {
				t.Errorf("%d players: %d rounds, want %d", n, len(b.Rounds), wantRounds)
			}
			if got, want := countMatches(b), n*(n-1)/2; got != want {
				t.Errorf("%d players: %d matches, want %d", n, got, want)
			}

			seen := make(map[string]string)
			for _, m := range b.AllMatches() {
				if m.SlotA.ParticipantID == nil || m.SlotB.ParticipantID == nil {
					t.Fatalf("%s has an unresolved slot; round robin fixes all pairings up front", m.UID)
				}
				if m.Status != MatchScheduled {
					t.Errorf("%s status = %s, want scheduled", m.UID, m.Status)
				}
				key := pairKey(*m.SlotA.ParticipantID, *m.SlotB.ParticipantID)
				if prior, dup := seen[key]; dup {
					t.Errorf("pair %s scheduled twice (%s and %s)", key, prior, m.UID)
				}
				seen[key] = m.UID
			}
		})
	}
}

func TestRoundRobinNoPlayerTwicePerRound(t *testing.T) {
	b, err := Generate(models.FormatRoundRobin, GenerateParams{Seeded: testSeeds(7)})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range b.Rounds {
		// Odd field: one player sits out each round, so three matches.
		if len(r.Matches) != 3 {
			t.Errorf("round %d has %d matches, want 3", r.Number, len(r.Matches))
		}
		inRound := make(map[string]bool)
		for _, m := range r.Matches {
			for _, id := range []string{*m.SlotA.ParticipantID, *m.SlotB.ParticipantID} {
				if inRound[id] {
					t.Errorf("round %d schedules %s twice", r.Number, id)
				}
				inRound[id] = true
			}
		}
	}
}

func TestRoundRobinStandingsChampion(t *testing.T) {
	seeded := testSeeds(5)
	b, err := Generate(models.FormatRoundRobin, GenerateParams{Seeded: seeded})
	if err != nil {
		t.Fatal(err)
	}
	decisive := playOut(t, b, lowerID)
	if decisive != 10 {
		t.Fatalf("5 players: %d decisive matches, want 10", decisive)
	}
	standings := ComputeStandings(b, seedMap(seeded))
	// p01 beats everyone, p02 beats everyone but p01, and so on.
	for i, s := range standings {
		wantID := fmt.Sprintf("p%02d", i+1)
		wantPoints := 4 - i
		if s.ParticipantID != wantID || s.Points != wantPoints {
			t.Errorf("standing %d = %s with %d points, want %s with %d",
				i+1, s.ParticipantID, s.Points, wantID, wantPoints)
		}
		if s.Played != 4 {
			t.Errorf("%s played %d matches, want 4", s.ParticipantID, s.Played)
		}
	}
	placements := FinalPlacements(b, seedMap(seeded))
	if placements[0] != "p01" {
		t.Errorf("first place = %s, want p01", placements[0])
	}
}
