package brackets

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/moltblox/tournament-engine/models"
)

// testParticipants builds n participants whose ratings strictly decrease,
// so ranked seeding assigns seed i to participant "p0i".
func testParticipants(n int) []*models.Participant {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	out := make([]*models.Participant, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Participant{
			ID:           fmt.Sprintf("p%02d", i+1),
			TournamentID: "t1",
			Address:      fmt.Sprintf("0x%040d", i+1),
			Rating:       2000 - 10*i,
			Status:       models.ParticipantActive,
			RegisteredAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

// testSeeds assigns seeds 1..n to ids "p01".."p0n" directly, bypassing
// the seeder.
func testSeeds(n int) []SeededPlayer {
	seeded := make([]SeededPlayer, n)
	for i := 0; i < n; i++ {
		seeded[i] = SeededPlayer{ParticipantID: fmt.Sprintf("p%02d", i+1), Seed: i + 1}
	}
	return seeded
}

func seedMap(seeded []SeededPlayer) map[string]int {
	seeds := make(map[string]int)
	for _, p := range seeded {
		if !p.IsBye {
			seeds[p.ParticipantID] = p.Seed
		}
	}
	return seeds
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// lowerID always advances the lexicographically smaller participant,
// which with testSeeds ids means the better seed.
func lowerID(m *Match) string {
	a, c := *m.SlotA.ParticipantID, *m.SlotB.ParticipantID
	if a < c {
		return a
	}
	return c
}

func higherID(m *Match) string {
	a, c := *m.SlotA.ParticipantID, *m.SlotB.ParticipantID
	if a > c {
		return a
	}
	return c
}

// playOut decides every resolvable match with the given picker until the
// bracket has no playable match left. Returns the number of played
// (non-bye) results applied.
func playOut(t *testing.T, b *Bracket, win func(*Match) string) int {
	t.Helper()
	decisive := 0
	for {
		progressed := false
		for _, m := range b.AllMatches() {
			if m.Decided() || m.SlotA.ParticipantID == nil || m.SlotB.ParticipantID == nil {
				continue
			}
			if _, err := ApplyResult(b, m.UID, win(m), nil); err != nil {
				t.Fatalf("apply result for %s: %v", m.UID, err)
			}
			decisive++
			progressed = true
		}
		if !progressed {
			return decisive
		}
	}
}

func countMatches(b *Bracket) int {
	return len(b.AllMatches())
}

func decidedNonByeCount(b *Bracket) int {
	n := 0
	for _, m := range b.AllMatches() {
		if m.Decided() && !m.IsBye {
			n++
		}
	}
	return n
}
