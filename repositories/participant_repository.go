package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/moltblox/tournament-engine/models"
)

var (
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrParticipantConflict = errors.New("player is already registered for this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, participant *models.Participant) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Participant, error)
	GetByAddress(ctx context.Context, exec SQLExecutor, tournamentID, address string) (*models.Participant, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
	UpdateSeed(ctx context.Context, exec SQLExecutor, id string, seed int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.ParticipantStatus) error
	UpdateStatusByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, from, to models.ParticipantStatus) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participantColumns = `
	id, tournament_id, address, display_name, rating, seed, entry_fee_paid, status, registered_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(
		&p.ID, &p.TournamentID, &p.Address, &p.DisplayName,
		&p.Rating, &p.Seed, &p.EntryFeePaid, &p.Status, &p.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (
			id, tournament_id, address, display_name, rating, entry_fee_paid, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING registered_at`

	err := executor.QueryRowContext(ctx, query,
		p.ID, p.TournamentID, p.Address, p.DisplayName, p.Rating, p.EntryFeePaid, p.Status,
	).Scan(&p.RegisteredAt)

	if pqErr, ok := err.(*pq.Error); ok {
		// One registration per address per tournament.
		if pqErr.Code == "23505" && pqErr.Constraint == "participants_tournament_id_address_key" {
			return ErrParticipantConflict
		}
	}
	return err
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + ` FROM participants WHERE id = $1`
	p, err := scanParticipant(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) GetByAddress(ctx context.Context, exec SQLExecutor, tournamentID, address string) (*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + ` FROM participants WHERE tournament_id = $1 AND address = $2`
	p, err := scanParticipant(executor.QueryRowContext(ctx, query, tournamentID, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + `
		FROM participants WHERE tournament_id = $1 ORDER BY registered_at ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, scanErr := scanParticipant(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE tournament_id = $1 AND status != $2`,
		tournamentID, models.ParticipantWithdrawn,
	).Scan(&count)
	return count, err
}

// UpdateSeed records the rank assigned by the seeder when the bracket
// is generated.
func (r *postgresParticipantRepository) UpdateSeed(ctx context.Context, exec SQLExecutor, id string, seed int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE participants SET seed = $1 WHERE id = $2`, seed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.ParticipantStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE participants SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

// UpdateStatusByTournament moves every participant of a tournament from
// one status to another, e.g. registered to active when the bracket is
// generated.
func (r *postgresParticipantRepository) UpdateStatusByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, from, to models.ParticipantStatus) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE participants SET status = $1 WHERE tournament_id = $2 AND status = $3`,
		to, tournamentID, from)
	return err
}
