package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/moltblox/tournament-engine/brackets"
	"github.com/moltblox/tournament-engine/models"
	"github.com/moltblox/tournament-engine/repositories"
)

// In-memory repository fakes. They ignore the SQLExecutor parameter; the
// service's transaction helper runs the mutation directly when no
// database is configured.

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	clone := *t
	r.tournaments[t.ID] = &clone
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdatePrizePool(_ context.Context, _ repositories.SQLExecutor, id string, prizePool string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.PrizePool = prizePool
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(_ context.Context, id string, bannerKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = bannerKey
	return nil
}

func (r *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(_ context.Context, _ repositories.SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*models.Tournament
	for _, t := range r.tournaments {
		if (t.Status == models.StatusUpcoming && !t.RegDate.After(currentTime)) ||
			(t.Status == models.StatusRegistration && !t.StartDate.After(currentTime)) {
			clone := *t
			due = append(due, &clone)
		}
	}
	return due, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*models.Participant
	seq          int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[string]*models.Participant)}
}

func (r *fakeParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.Address == p.Address {
			return repositories.ErrParticipantConflict
		}
	}
	r.seq++
	p.RegisteredAt = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	clone := *p
	r.participants[p.ID] = &clone
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeParticipantRepo) GetByAddress(_ context.Context, _ repositories.SQLExecutor, tournamentID, address string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.TournamentID == tournamentID && p.Address == address {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Participant
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	// Registration order, as the SQL implementation guarantees.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].RegisteredAt.Before(out[i].RegisteredAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) (int, error) {
	list, err := r.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, p := range list {
		if p.Status != models.ParticipantWithdrawn {
			count++
		}
	}
	return count, nil
}

func (r *fakeParticipantRepo) UpdateSeed(_ context.Context, _ repositories.SQLExecutor, id string, seed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Seed = seed
	return nil
}

func (r *fakeParticipantRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.ParticipantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeParticipantRepo) UpdateStatusByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string, from, to models.ParticipantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.TournamentID == tournamentID && p.Status == from {
			p.Status = to
		}
	}
	return nil
}

type fakeBracketRepo struct {
	mu       sync.Mutex
	brackets map[string]*brackets.Bracket
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{brackets: make(map[string]*brackets.Bracket)}
}

func (r *fakeBracketRepo) Save(_ context.Context, _ repositories.SQLExecutor, tournamentID string, b *brackets.Bracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brackets[tournamentID] = b
	return nil
}

func (r *fakeBracketRepo) Get(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (*brackets.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brackets[tournamentID]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	return b, nil
}

func (r *fakeBracketRepo) UpdateMatch(_ context.Context, _ repositories.SQLExecutor, _ string, _ *brackets.Match) error {
	return nil
}

func (r *fakeBracketRepo) AppendRound(_ context.Context, _ repositories.SQLExecutor, _ string, _ *brackets.Round, _ int) error {
	return nil
}

func (r *fakeBracketRepo) SetCurrentRound(_ context.Context, _ repositories.SQLExecutor, _ string, _ int) error {
	return nil
}

type fakeWinnerRepo struct {
	mu      sync.Mutex
	winners map[string][]*models.TournamentWinner
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{winners: make(map[string][]*models.TournamentWinner)}
}

func (r *fakeWinnerRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, winners []*models.TournamentWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range winners {
		clone := *w
		r.winners[w.TournamentID] = append(r.winners[w.TournamentID], &clone)
	}
	return nil
}

func (r *fakeWinnerRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.TournamentWinner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TournamentWinner, 0, len(r.winners[tournamentID]))
	for _, w := range r.winners[tournamentID] {
		clone := *w
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeWinnerRepo) UpdatePayout(_ context.Context, _ repositories.SQLExecutor, tournamentID, participantID string, status models.PayoutStatus, txID *string, paidAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.winners[tournamentID] {
		if w.ParticipantID == participantID {
			w.PayoutStatus = status
			w.PayoutTxID = txID
			w.PaidAt = paidAt
			return nil
		}
	}
	return repositories.ErrWinnerNotFound
}

type walletCall struct {
	Address string
	Amount  string
	Memo    string
}

// fakeWallet records every transfer and can be told to fail debits or
// payouts to specific addresses.
type fakeWallet struct {
	mu        sync.Mutex
	debits    []walletCall
	payments  []walletCall
	failDebit bool
	failPayTo map[string]bool
	txCounter int
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{failPayTo: make(map[string]bool)}
}

func (w *fakeWallet) Debit(_ context.Context, address, amount, memo string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failDebit {
		return fmt.Errorf("debit declined for %s", address)
	}
	w.debits = append(w.debits, walletCall{Address: address, Amount: amount, Memo: memo})
	return nil
}

func (w *fakeWallet) Pay(_ context.Context, address, amount, memo string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failPayTo[address] {
		return "", fmt.Errorf("payment declined for %s", address)
	}
	w.txCounter++
	w.payments = append(w.payments, walletCall{Address: address, Amount: amount, Memo: memo})
	return fmt.Sprintf("tx-%d", w.txCounter), nil
}

func (w *fakeWallet) paymentsTo(address string) []walletCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []walletCall
	for _, c := range w.payments {
		if c.Address == address {
			out = append(out, c)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
