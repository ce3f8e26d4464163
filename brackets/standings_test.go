package brackets

import (
	"testing"

	"github.com/moltblox/tournament-engine/models"
)

func TestHeadToHeadBreaksExactTwoWayTie(t *testing.T) {
	seeded := testSeeds(4)
	b, err := Generate(models.FormatRoundRobin, GenerateParams{Seeded: seeded})
	if err != nil {
		t.Fatal(err)
	}
	// p01 and p02 finish level on two points, with p02 holding the
	// direct win: p02 beats p01 and p03 but loses to p04; p01 beats p03
	// and p04.
	win := func(m *Match) string {
		a, c := *m.SlotA.ParticipantID, *m.SlotB.ParticipantID
		has := func(id string) bool { return a == id || c == id }
		switch {
		case has("p01") && has("p02"):
			return "p02"
		case has("p02") && has("p04"):
			return "p04"
		case has("p01"):
			return "p01"
		case has("p02"):
			return "p02"
		default:
			return lowerID(m)
		}
	}
	playOut(t, b, win)

	standings := ComputeStandings(b, seedMap(seeded))
	// p01 and p02 both finish on two points; the direct result must put
	// p02 first even though p01 holds the better seed.
	if standings[0].ParticipantID != "p02" || standings[1].ParticipantID != "p01" {
		t.Fatalf("head-to-head should rank p02 over p01, got %s then %s",
			standings[0].ParticipantID, standings[1].ParticipantID)
	}
}

func TestSeedBreaksLargerTies(t *testing.T) {
	seeded := testSeeds(3)
	b, err := Generate(models.FormatRoundRobin, GenerateParams{Seeded: seeded})
	if err != nil {
		t.Fatal(err)
	}
	// A perfect cycle: p01 > p02 > p03 > p01, all on one point.
	win := func(m *Match) string {
		a, c := *m.SlotA.ParticipantID, *m.SlotB.ParticipantID
		has := func(id string) bool { return a == id || c == id }
		switch {
		case has("p01") && has("p02"):
			return "p01"
		case has("p02") && has("p03"):
			return "p02"
		default:
			return "p03"
		}
	}
	playOut(t, b, win)

	standings := ComputeStandings(b, seedMap(seeded))
	// Three-way tie: head-to-head does not apply, seed decides.
	for i, want := range []string{"p01", "p02", "p03"} {
		if standings[i].ParticipantID != want {
			t.Errorf("standing %d = %s, want %s", i+1, standings[i].ParticipantID, want)
		}
	}
}

func TestForfeitCountsAsPlayedLoss(t *testing.T) {
	seeded := testSeeds(2)
	b, err := Generate(models.FormatRoundRobin, GenerateParams{Seeded: seeded})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyForfeit(b, "R1M1", "p02"); err != nil {
		t.Fatal(err)
	}
	standings := ComputeStandings(b, seedMap(seeded))
	if standings[0].ParticipantID != "p01" || standings[0].Wins != 1 || standings[0].Played != 1 {
		t.Fatalf("forfeit should credit p01 a played win, got %+v", standings[0])
	}
	if standings[1].ParticipantID != "p02" || standings[1].Losses != 1 || standings[1].Played != 1 {
		t.Fatalf("forfeit should charge p02 a played loss, got %+v", standings[1])
	}
}

func TestEliminationPlacementsByDepth(t *testing.T) {
	seeded := PadToPowerOfTwo(testSeeds(8))
	b, err := Generate(models.FormatSingleElimination, GenerateParams{Seeded: seeded})
	if err != nil {
		t.Fatal(err)
	}
	playOut(t, b, lowerID)

	got := FinalPlacements(b, seedMap(seeded))
	// Champion first, runner-up second, then semifinal losers by seed,
	// then quarterfinal losers by seed.
	want := []string{"p01", "p02", "p03", "p04", "p05", "p06", "p07", "p08"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("placements = %v, want %v", got, want)
		}
	}
}

func TestStandingsIncludePlayersWithoutResults(t *testing.T) {
	seeded := testSeeds(6)
	b, err := Generate(models.FormatSwiss, GenerateParams{Seeded: seeded, SwissRounds: 3})
	if err != nil {
		t.Fatal(err)
	}
	standings := ComputeStandings(b, seedMap(seeded))
	if len(standings) != 6 {
		t.Fatalf("standings cover %d players, want all 6 before any result", len(standings))
	}
	for _, s := range standings {
		if s.Points != 0 || s.Played != 0 {
			t.Errorf("%s has a record before any result: %+v", s.ParticipantID, s)
		}
	}
}
