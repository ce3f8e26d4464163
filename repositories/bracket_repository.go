package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moltblox/tournament-engine/brackets"
)

var ErrBracketNotFound = errors.New("bracket not found")

// BracketRepository persists the flat round/match structure. Matches are
// rows keyed by (tournament_id, uid); slot contents and forwarding
// references are stored as JSONB because their shape is small, stable,
// and never queried relationally.
type BracketRepository interface {
	Save(ctx context.Context, exec SQLExecutor, tournamentID string, bracket *brackets.Bracket) error
	Get(ctx context.Context, exec SQLExecutor, tournamentID string) (*brackets.Bracket, error)
	UpdateMatch(ctx context.Context, exec SQLExecutor, tournamentID string, match *brackets.Match) error
	AppendRound(ctx context.Context, exec SQLExecutor, tournamentID string, round *brackets.Round, currentRound int) error
	SetCurrentRound(ctx context.Context, exec SQLExecutor, tournamentID string, currentRound int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Save(ctx context.Context, exec SQLExecutor, tournamentID string, bracket *brackets.Bracket) error {
	executor := r.getExecutor(exec)

	_, err := executor.ExecContext(ctx,
		`INSERT INTO brackets (tournament_id, format, current_round) VALUES ($1, $2, $3)
		 ON CONFLICT (tournament_id) DO UPDATE SET format = $2, current_round = $3`,
		tournamentID, bracket.Format, bracket.CurrentRound)
	if err != nil {
		return fmt.Errorf("failed to save bracket header: %w", err)
	}

	for _, round := range bracket.Rounds {
		if err := r.insertRoundMatches(ctx, executor, tournamentID, round); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresBracketRepository) insertRoundMatches(ctx context.Context, executor SQLExecutor, tournamentID string, round *brackets.Round) error {
	for _, m := range round.Matches {
		slotA, slotB, winnerTo, loserTo, err := encodeMatchRefs(m)
		if err != nil {
			return err
		}
		_, err = executor.ExecContext(ctx, `
			INSERT INTO bracket_matches (
				tournament_id, uid, segment, round, match_number, play_order,
				slot_a, slot_b, status, winner_id, score, is_bye, winner_to, loser_to
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (tournament_id, uid) DO NOTHING`,
			tournamentID, m.UID, m.Segment, m.Round, m.MatchNumber, round.PlayOrder,
			slotA, slotB, m.Status, m.WinnerID, m.Score, m.IsBye, winnerTo, loserTo)
		if err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.UID, err)
		}
	}
	return nil
}

func (r *postgresBracketRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID string) (*brackets.Bracket, error) {
	executor := r.getExecutor(exec)

	bracket := &brackets.Bracket{}
	err := executor.QueryRowContext(ctx,
		`SELECT format, current_round FROM brackets WHERE tournament_id = $1`,
		tournamentID,
	).Scan(&bracket.Format, &bracket.CurrentRound)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	rows, err := executor.QueryContext(ctx, `
		SELECT uid, segment, round, match_number, play_order,
		       slot_a, slot_b, status, winner_id, score, is_bye, winner_to, loser_to
		FROM bracket_matches
		WHERE tournament_id = $1
		ORDER BY play_order ASC, match_number ASC`,
		tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*brackets.Round
	roundByOrder := make(map[int]*brackets.Round)
	for rows.Next() {
		var (
			m         brackets.Match
			playOrder int
			slotA     []byte
			slotB     []byte
			winnerTo  []byte
			loserTo   []byte
		)
		if scanErr := rows.Scan(
			&m.UID, &m.Segment, &m.Round, &m.MatchNumber, &playOrder,
			&slotA, &slotB, &m.Status, &m.WinnerID, &m.Score, &m.IsBye, &winnerTo, &loserTo,
		); scanErr != nil {
			return nil, scanErr
		}
		if err := decodeMatchRefs(&m, slotA, slotB, winnerTo, loserTo); err != nil {
			return nil, fmt.Errorf("failed to decode match %s: %w", m.UID, err)
		}
		round, ok := roundByOrder[playOrder]
		if !ok {
			round = &brackets.Round{PlayOrder: playOrder, Segment: m.Segment, Number: m.Round}
			roundByOrder[playOrder] = round
			rounds = append(rounds, round)
		}
		round.Matches = append(round.Matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	bracket.Rounds = rounds
	bracket.Reindex()
	return bracket, nil
}

func (r *postgresBracketRepository) UpdateMatch(ctx context.Context, exec SQLExecutor, tournamentID string, m *brackets.Match) error {
	executor := r.getExecutor(exec)
	slotA, slotB, _, _, err := encodeMatchRefs(m)
	if err != nil {
		return err
	}
	result, err := executor.ExecContext(ctx, `
		UPDATE bracket_matches
		SET slot_a = $1, slot_b = $2, status = $3, winner_id = $4, score = $5, is_bye = $6
		WHERE tournament_id = $7 AND uid = $8`,
		slotA, slotB, m.Status, m.WinnerID, m.Score, m.IsBye, tournamentID, m.UID)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", m.UID, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) AppendRound(ctx context.Context, exec SQLExecutor, tournamentID string, round *brackets.Round, currentRound int) error {
	executor := r.getExecutor(exec)
	if err := r.insertRoundMatches(ctx, executor, tournamentID, round); err != nil {
		return err
	}
	return r.SetCurrentRound(ctx, executor, tournamentID, currentRound)
}

func (r *postgresBracketRepository) SetCurrentRound(ctx context.Context, exec SQLExecutor, tournamentID string, currentRound int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE brackets SET current_round = $1 WHERE tournament_id = $2`,
		currentRound, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update current round: %w", err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func encodeMatchRefs(m *brackets.Match) (slotA, slotB, winnerTo, loserTo []byte, err error) {
	if slotA, err = json.Marshal(m.SlotA); err != nil {
		return
	}
	if slotB, err = json.Marshal(m.SlotB); err != nil {
		return
	}
	if m.WinnerTo != nil {
		if winnerTo, err = json.Marshal(m.WinnerTo); err != nil {
			return
		}
	}
	if m.LoserTo != nil {
		if loserTo, err = json.Marshal(m.LoserTo); err != nil {
			return
		}
	}
	return
}

func decodeMatchRefs(m *brackets.Match, slotA, slotB, winnerTo, loserTo []byte) error {
	if err := json.Unmarshal(slotA, &m.SlotA); err != nil {
		return err
	}
	if err := json.Unmarshal(slotB, &m.SlotB); err != nil {
		return err
	}
	if len(winnerTo) > 0 {
		m.WinnerTo = &brackets.SlotRef{}
		if err := json.Unmarshal(winnerTo, m.WinnerTo); err != nil {
			return err
		}
	}
	if len(loserTo) > 0 {
		m.LoserTo = &brackets.SlotRef{}
		if err := json.Unmarshal(loserTo, m.LoserTo); err != nil {
			return err
		}
	}
	return nil
}
