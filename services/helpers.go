package services

import (
	"fmt"
	"time"

	"github.com/moltblox/tournament-engine/models"
)

// assignedSeeds maps participant ids to the ranks the seeder assigned
// when the bracket was generated. A participant without a recorded seed
// falls back to registration order, keeping the map total for
// tournaments persisted before seeds were stored.
func assignedSeeds(participants []*models.Participant) map[string]int {
	seeds := make(map[string]int, len(participants))
	n := 0
	for _, p := range participants {
		if p.Status == models.ParticipantWithdrawn {
			continue
		}
		n++
		if p.Seed > 0 {
			seeds[p.ID] = p.Seed
		} else {
			seeds[p.ID] = n
		}
	}
	return seeds
}

func validateTournamentDates(reg, start, end time.Time) error {
	if reg.IsZero() || start.IsZero() || end.IsZero() {
		return ErrTournamentDatesRequired
	}
	if reg.After(start) {
		return fmt.Errorf("%w: registration opens %s, start is %s",
			ErrTournamentInvalidRegDate, reg.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s, end %s",
			ErrTournamentInvalidDates, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}
