package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/moltblox/tournament-engine/brackets"
	"github.com/moltblox/tournament-engine/models"
	"github.com/moltblox/tournament-engine/repositories"
	"github.com/moltblox/tournament-engine/storage"
)

// QueryService serves the read side: tournament details with their linked
// entities, brackets, standings and prize results. Independent lookups
// run concurrently.
type QueryService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	bracketRepo     repositories.BracketRepository
	winnerRepo      repositories.WinnerRepository
	uploader        storage.FileUploader
}

func NewQueryService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	bracketRepo repositories.BracketRepository,
	winnerRepo repositories.WinnerRepository,
	uploader storage.FileUploader,
) *QueryService {
	return &QueryService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		bracketRepo:     bracketRepo,
		winnerRepo:      winnerRepo,
		uploader:        uploader,
	}
}

func (s *QueryService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

// GetTournament loads a tournament with its participants and winners.
func (s *QueryService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, nil, t.ID)
		if err != nil {
			return err
		}
		t.Participants = make([]models.Participant, len(participants))
		for i, p := range participants {
			t.Participants[i] = *p
		}
		return nil
	})
	g.Go(func() error {
		winners, err := s.winnerRepo.ListByTournament(gCtx, nil, t.ID)
		if err != nil {
			return err
		}
		t.Winners = make([]models.TournamentWinner, len(winners))
		for i, w := range winners {
			t.Winners[i] = *w
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.populateBannerURL(t)
	return t, nil
}

func (s *QueryService) GetBracket(ctx context.Context, tournamentID string) (*brackets.Bracket, error) {
	bracket, err := s.bracketRepo.Get(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return bracket, nil
}

// GetStandings computes the live standings table from the persisted
// bracket.
func (s *QueryService) GetStandings(ctx context.Context, tournamentID string) ([]*brackets.Standing, error) {
	var bracket *brackets.Bracket
	var participants []*models.Participant

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bracket, err = s.bracketRepo.Get(gCtx, nil, tournamentID)
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return brackets.ComputeStandings(bracket, assignedSeeds(participants)), nil
}

// GetPrizeResults returns the recorded winners with their payout state.
func (s *QueryService) GetPrizeResults(ctx context.Context, tournamentID string) ([]*models.TournamentWinner, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.winnerRepo.ListByTournament(ctx, nil, tournamentID)
}

func (s *QueryService) populateBannerURL(t *models.Tournament) {
	if s.uploader == nil || t.BannerKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.BannerKey)
	if url != "" {
		t.BannerURL = &url
	}
}
