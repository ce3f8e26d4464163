package brackets

import (
	"math/rand"
	"testing"

	"github.com/moltblox/tournament-engine/models"
)

func TestSeedPlayersRanked(t *testing.T) {
	participants := testParticipants(6)
	// Shuffle the input so the sort has work to do.
	participants[0], participants[3] = participants[3], participants[0]
	participants[1], participants[5] = participants[5], participants[1]

	seeded := SeedPlayers(participants, models.SeedingRanked, nil)
	if len(seeded) != 6 {
		t.Fatalf("got %d seeded players, want 6", len(seeded))
	}
	for i, p := range seeded {
		wantID := testParticipants(6)[i].ID
		if p.ParticipantID != wantID || p.Seed != i+1 {
			t.Errorf("seed %d = %s, want %s", i+1, p.ParticipantID, wantID)
		}
	}
}

func TestSeedPlayersRankedTieBreaksByRegistration(t *testing.T) {
	participants := testParticipants(4)
	for _, p := range participants {
		p.Rating = 1500
	}
	// Equal ratings: earlier registration wins the better seed.
	seeded := SeedPlayers(participants, models.SeedingRanked, nil)
	for i, p := range seeded {
		if p.ParticipantID != participants[i].ID {
			t.Errorf("seed %d = %s, want registration order %s", i+1, p.ParticipantID, participants[i].ID)
		}
	}
}

func TestSeedPlayersRandomIsPermutation(t *testing.T) {
	participants := testParticipants(16)
	seeded := SeedPlayers(participants, models.SeedingRandom, testRand())

	seen := make(map[string]bool)
	for _, p := range seeded {
		if seen[p.ParticipantID] {
			t.Fatalf("participant %s seeded twice", p.ParticipantID)
		}
		seen[p.ParticipantID] = true
	}
	if len(seen) != 16 {
		t.Fatalf("got %d distinct participants, want 16", len(seen))
	}
}

func TestSeedPlayersRandomIsDeterministicPerSource(t *testing.T) {
	a := SeedPlayers(testParticipants(12), models.SeedingRandom, rand.New(rand.NewSource(7)))
	b := SeedPlayers(testParticipants(12), models.SeedingRandom, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same source produced different orders at seed %d: %s vs %s", i+1, a[i].ParticipantID, b[i].ParticipantID)
		}
	}
}

func TestPadToPowerOfTwo(t *testing.T) {
	tests := []struct {
		players  int
		wantSize int
		wantByes int
	}{
		{2, 2, 0},
		{3, 4, 1},
		{5, 8, 3},
		{8, 8, 0},
		{9, 16, 7},
	}
	for _, tc := range tests {
		padded := PadToPowerOfTwo(testSeeds(tc.players))
		if len(padded) != tc.wantSize {
			t.Errorf("PadToPowerOfTwo(%d players): size %d, want %d", tc.players, len(padded), tc.wantSize)
		}
		byes := 0
		for i, p := range padded {
			if p.Seed != i+1 {
				t.Errorf("PadToPowerOfTwo(%d players): position %d has seed %d", tc.players, i, p.Seed)
			}
			if p.IsBye {
				byes++
				if i < tc.players {
					t.Errorf("PadToPowerOfTwo(%d players): bye at position %d displaces a player", tc.players, i)
				}
			}
		}
		if byes != tc.wantByes {
			t.Errorf("PadToPowerOfTwo(%d players): %d byes, want %d", tc.players, byes, tc.wantByes)
		}
	}
}

func TestSeedOrder(t *testing.T) {
	got := seedOrder(8)
	want := []int{1, 8, 4, 5, 2, 7, 3, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("seedOrder(8) = %v, want %v", got, want)
		}
	}
	// Adjacent positions pair up; every pair must sum to size+1 so the
	// top seeds cannot meet before the late rounds.
	for _, size := range []int{2, 4, 16, 32} {
		order := seedOrder(size)
		for i := 0; i < size; i += 2 {
			if order[i]+order[i+1] != size+1 {
				t.Errorf("seedOrder(%d): pair (%d, %d) does not sum to %d", size, order[i], order[i+1], size+1)
			}
		}
	}
}
