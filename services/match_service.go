package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moltblox/tournament-engine/brackets"
	"github.com/moltblox/tournament-engine/repositories"
)

// MatchService covers the administrative side of matches: looking them up
// and moving them through the pre-result statuses. Results go through
// TournamentService.SubmitResult.
type MatchService struct {
	bracketRepo repositories.BracketRepository
	hub         *brackets.Hub
	logger      *slog.Logger
}

func NewMatchService(bracketRepo repositories.BracketRepository, hub *brackets.Hub, logger *slog.Logger) *MatchService {
	return &MatchService{bracketRepo: bracketRepo, hub: hub, logger: logger}
}

func (s *MatchService) GetMatch(ctx context.Context, tournamentID, matchUID string) (*brackets.Match, error) {
	bracket, err := s.bracketRepo.Get(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	m := bracket.Match(matchUID)
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// ListRound returns the matches of one round by play order; playOrder
// zero means the current round.
func (s *MatchService) ListRound(ctx context.Context, tournamentID string, playOrder int) ([]*brackets.Match, error) {
	bracket, err := s.bracketRepo.Get(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	if playOrder == 0 {
		playOrder = bracket.CurrentRound
	}
	if playOrder < 1 || playOrder > len(bracket.Rounds) {
		return nil, fmt.Errorf("%w: round %d", ErrValidation, playOrder)
	}
	return bracket.Rounds[playOrder-1].Matches, nil
}

// UpdateMatchStatus applies an administrative transition, e.g. marking a
// scheduled match in progress when both players check in.
func (s *MatchService) UpdateMatchStatus(ctx context.Context, tournamentID, matchUID string, status brackets.MatchStatus) (*brackets.Match, error) {
	bracket, err := s.bracketRepo.Get(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	m, err := brackets.UpdateStatus(bracket, matchUID, status)
	if err != nil {
		return nil, mapBracketError(err)
	}
	if err := s.bracketRepo.UpdateMatch(ctx, nil, tournamentID, m); err != nil {
		return nil, err
	}
	s.logger.Info("match status updated",
		"tournament_id", tournamentID, "match_uid", matchUID, "status", status)
	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentID, brackets.Event{
			Type:         brackets.EventMatchUpdated,
			TournamentID: tournamentID,
			Payload:      m,
		})
	}
	return m, nil
}
