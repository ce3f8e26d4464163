package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/moltblox/tournament-engine/models"
)

var ErrWinnerNotFound = errors.New("winner record not found")

// WinnerRepository stores the bracket-of-record placements and tracks the
// wallet payout for each one independently.
type WinnerRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, winners []*models.TournamentWinner) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.TournamentWinner, error)
	UpdatePayout(ctx context.Context, exec SQLExecutor, tournamentID, participantID string, status models.PayoutStatus, txID *string, paidAt *time.Time) error
}

type postgresWinnerRepository struct {
	db *sql.DB
}

func NewPostgresWinnerRepository(db *sql.DB) WinnerRepository {
	return &postgresWinnerRepository{db: db}
}

func (r *postgresWinnerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWinnerRepository) CreateBatch(ctx context.Context, exec SQLExecutor, winners []*models.TournamentWinner) error {
	executor := r.getExecutor(exec)
	for _, w := range winners {
		_, err := executor.ExecContext(ctx, `
			INSERT INTO tournament_winners (
				tournament_id, participant_id, placement, prize_amount, percentage, payout_status
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (tournament_id, participant_id) DO NOTHING`,
			w.TournamentID, w.ParticipantID, w.Placement, w.PrizeAmount, w.Percentage, w.PayoutStatus)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresWinnerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.TournamentWinner, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT tournament_id, participant_id, placement, prize_amount, percentage,
		       payout_status, payout_tx_id, paid_at
		FROM tournament_winners
		WHERE tournament_id = $1
		ORDER BY placement ASC`,
		tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	winners := make([]*models.TournamentWinner, 0)
	for rows.Next() {
		w := &models.TournamentWinner{}
		if scanErr := rows.Scan(
			&w.TournamentID, &w.ParticipantID, &w.Placement, &w.PrizeAmount, &w.Percentage,
			&w.PayoutStatus, &w.PayoutTxID, &w.PaidAt,
		); scanErr != nil {
			return nil, scanErr
		}
		winners = append(winners, w)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return winners, nil
}

func (r *postgresWinnerRepository) UpdatePayout(ctx context.Context, exec SQLExecutor, tournamentID, participantID string, status models.PayoutStatus, txID *string, paidAt *time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE tournament_winners
		SET payout_status = $1, payout_tx_id = $2, paid_at = $3
		WHERE tournament_id = $4 AND participant_id = $5`,
		status, txID, paidAt, tournamentID, participantID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrWinnerNotFound)
}
