package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/moltblox/tournament-engine/brackets"
	"github.com/moltblox/tournament-engine/models"
	"github.com/moltblox/tournament-engine/prizes"
	"github.com/moltblox/tournament-engine/repositories"
	"github.com/moltblox/tournament-engine/storage"
	"github.com/moltblox/tournament-engine/wallet"
)

// walletCallTimeout bounds every external wallet call so a slow payment
// provider cannot wedge a tournament mutation.
const walletCallTimeout = 15 * time.Second

type CreateTournamentInput struct {
	Name            string                    `json:"name"`
	Description     *string                   `json:"description"`
	GameID          string                    `json:"game_id"`
	Format          models.TournamentFormat   `json:"format"`
	Seeding         models.SeedingMethod      `json:"seeding"`
	MaxParticipants int                       `json:"max_participants"`
	SwissRounds     int                       `json:"swiss_rounds"`
	Exhibition      bool                      `json:"exhibition"`
	EntryFee        string                    `json:"entry_fee"`
	Distribution    *models.PrizeDistribution `json:"distribution"`
	RegDate         time.Time                 `json:"reg_date"`
	StartDate       time.Time                 `json:"start_date"`
	EndDate         time.Time                 `json:"end_date"`
}

type RegisterInput struct {
	TournamentID string `json:"-"`
	Address      string `json:"address"`
	DisplayName  string `json:"display_name"`
	Rating       int    `json:"rating"`
}

type SubmitResultInput struct {
	TournamentID string  `json:"-"`
	MatchUID     string  `json:"-"`
	WinnerID     string  `json:"winner_id"`
	Score        *string `json:"score"`
	// Forfeit marks WinnerID's opponent as the forfeiting side instead of
	// recording a played result.
	Forfeit      bool   `json:"forfeit"`
	ForfeitingID string `json:"forfeiting_id"`
}

// TournamentService owns the full tournament lifecycle: creation,
// registration with entry-fee escrow, bracket generation, result
// progression and settlement. All mutations of one tournament serialize
// on a per-tournament lock; wallet calls never run under it.
type TournamentService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	bracketRepo     repositories.BracketRepository
	winnerRepo      repositories.WinnerRepository
	wallet          wallet.Client
	uploader        storage.FileUploader
	hub             *brackets.Hub
	clock           clockwork.Clock
	logger          *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	bracketRepo repositories.BracketRepository,
	winnerRepo repositories.WinnerRepository,
	walletClient wallet.Client,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	clock clockwork.Clock,
	logger *slog.Logger,
) *TournamentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		bracketRepo:     bracketRepo,
		winnerRepo:      winnerRepo,
		wallet:          walletClient,
		uploader:        uploader,
		hub:             hub,
		clock:           clock,
		logger:          logger,
		locks:           make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations of one tournament.
func (s *TournamentService) lockFor(tournamentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[tournamentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tournamentID] = l
	}
	return l
}

func (s *TournamentService) broadcast(tournamentID, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(tournamentID, brackets.Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateTournamentDates(input.RegDate, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.MaxParticipants < 2 && !input.Exhibition {
		return nil, ErrTournamentInvalidSize
	}
	if input.Format == models.FormatSwiss && input.SwissRounds < 1 {
		return nil, ErrSwissRoundsRequired
	}
	if !isValidAmount(input.EntryFee) {
		return nil, ErrTournamentInvalidFee
	}

	dist := models.DefaultPrizeDistribution
	if input.Distribution != nil {
		dist = *input.Distribution
	}
	if err := prizes.ValidateDistribution(dist); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	status := models.StatusUpcoming
	if !input.RegDate.After(s.clock.Now()) {
		status = models.StatusRegistration
	}

	t := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Description:     input.Description,
		GameID:          input.GameID,
		Format:          input.Format,
		Status:          status,
		Seeding:         input.Seeding,
		MaxParticipants: input.MaxParticipants,
		SwissRounds:     input.SwissRounds,
		Exhibition:      input.Exhibition,
		EntryFee:        input.EntryFee,
		PrizePool:       "0",
		Distribution:    dist,
		RegDate:         input.RegDate,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
	}
	if t.Seeding == "" {
		t.Seeding = models.SeedingRandom
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: tournament name already in use", ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("tournament created",
		"tournament_id", t.ID, "format", t.Format, "entry_fee", t.EntryFee)
	return t, nil
}

// Register debits the entry fee and commits the registration. The debit
// happens outside the tournament lock; if the registration cannot be
// committed afterwards (a race filled the last slot), the fee is
// refunded.
func (s *TournamentService) Register(ctx context.Context, input RegisterInput) (*models.Participant, error) {
	if input.Address == "" {
		return nil, ErrAddressRequired
	}

	lock := s.lockFor(input.TournamentID)

	lock.Lock()
	t, err := s.checkRegistrationOpen(ctx, input)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("reg:%s:%s", t.ID, input.Address)
	feePaid := false
	if isPositiveAmount(t.EntryFee) {
		walletCtx, cancel := context.WithTimeout(ctx, walletCallTimeout)
		err := s.wallet.Debit(walletCtx, input.Address, t.EntryFee, memo)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("entry fee debit: %w", err)
		}
		feePaid = true
	}

	lock.Lock()
	defer lock.Unlock()

	// The window between the debit and here may have closed registration
	// or filled the tournament: re-validate before committing.
	fresh, err := s.checkRegistrationOpen(ctx, input)
	if err != nil {
		s.refundEntryFee(t, input.Address, feePaid)
		return nil, err
	}
	t = fresh

	p := &models.Participant{
		ID:           uuid.NewString(),
		TournamentID: t.ID,
		Address:      input.Address,
		DisplayName:  input.DisplayName,
		Rating:       input.Rating,
		EntryFeePaid: feePaid,
		Status:       models.ParticipantRegistered,
	}

	err = repositories.WithinTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.participantRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		if feePaid {
			pool, err := addAmounts(t.PrizePool, t.EntryFee)
			if err != nil {
				return err
			}
			return s.tournamentRepo.UpdatePrizePool(ctx, tx, t.ID, pool)
		}
		return nil
	})
	if err != nil {
		s.refundEntryFee(t, input.Address, feePaid)
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	s.logger.Info("participant registered",
		"tournament_id", t.ID, "participant_id", p.ID, "address", p.Address)
	return p, nil
}

func (s *TournamentService) checkRegistrationOpen(ctx context.Context, input RegisterInput) (*models.Tournament, error) {
	t, err := s.getTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusRegistration {
		return t, ErrRegistrationNotOpen
	}
	count, err := s.participantRepo.CountByTournament(ctx, nil, t.ID)
	if err != nil {
		return t, err
	}
	if count >= t.MaxParticipants {
		return t, ErrTournamentFull
	}
	if _, err := s.participantRepo.GetByAddress(ctx, nil, t.ID, input.Address); err == nil {
		return t, ErrAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return t, err
	}
	return t, nil
}

// refundEntryFee returns a debited fee after a registration that could
// not be committed. Failure is logged, not returned: the registration
// error is the caller's answer.
func (s *TournamentService) refundEntryFee(t *models.Tournament, address string, feePaid bool) {
	if t == nil || !feePaid {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), walletCallTimeout)
	defer cancel()
	memo := fmt.Sprintf("refund:%s:%s", t.ID, address)
	if _, err := s.wallet.Pay(ctx, address, t.EntryFee, memo); err != nil {
		s.logger.Error("entry fee refund failed",
			"tournament_id", t.ID, "address", address, "error", err)
	}
}

// OpenRegistration moves an upcoming tournament into its registration
// window.
func (s *TournamentService) OpenRegistration(ctx context.Context, tournamentID string) error {
	lock := s.lockFor(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.Status != models.StatusUpcoming {
		return fmt.Errorf("%w: cannot open registration from %s", ErrState, t.Status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.StatusRegistration); err != nil {
		return err
	}
	s.logger.Info("registration opened", "tournament_id", t.ID)
	return nil
}

// UploadBanner stores a new banner image for the tournament and removes
// the previous one. The old object is deleted best effort.
func (s *TournamentService) UploadBanner(ctx context.Context, tournamentID, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: banner storage is not configured", ErrState)
	}

	ext, ok := bannerExtensions[contentType]
	if !ok {
		return nil, ErrBannerInvalidType
	}

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("banners/%s/%s%s", t.ID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("upload banner: %w", err)
	}

	oldKey := t.BannerKey
	if err := s.tournamentRepo.UpdateBannerKey(ctx, t.ID, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous banner",
				slog.String("tournament_id", t.ID),
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	t.BannerKey = &key
	url := s.uploader.GetPublicURL(key)
	if url != "" {
		t.BannerURL = &url
	}
	return t, nil
}

var bannerExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Start closes registration, seeds the field, generates the bracket and
// activates the tournament. An exhibition tournament with a single
// participant completes immediately with that participant taking the
// whole pool.
func (s *TournamentService) Start(ctx context.Context, tournamentID string) error {
	lock := s.lockFor(tournamentID)
	lock.Lock()
	defer lock.Unlock()
	return s.startLocked(ctx, tournamentID)
}

func (s *TournamentService) startLocked(ctx context.Context, tournamentID string) error {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.Status != models.StatusRegistration {
		return fmt.Errorf("%w: cannot start from %s", ErrState, t.Status)
	}

	participants, err := s.activeParticipants(ctx, t.ID)
	if err != nil {
		return err
	}

	if len(participants) < 2 {
		if t.Exhibition && len(participants) == 1 {
			return s.completeExhibition(ctx, t, participants[0])
		}
		return ErrNotEnoughPlayers
	}

	rng := rand.New(rand.NewSource(s.clock.Now().UnixNano()))
	seeded := brackets.SeedPlayers(participants, t.Seeding, rng)
	// The assigned ranks outlive bracket generation: standings tie-breaks
	// resolve by seed, not registration order.
	for i, p := range seeded {
		p.Seed = i + 1
	}

	field := seeded
	if t.Format == models.FormatSingleElimination || t.Format == models.FormatDoubleElimination {
		field = brackets.PadToPowerOfTwo(seeded)
	}

	bracket, err := brackets.Generate(t.Format, brackets.GenerateParams{
		TournamentID: t.ID,
		Seeded:       field,
		SwissRounds:  t.SwissRounds,
		Rand:         rng,
	})
	if err != nil {
		return err
	}

	err = repositories.WithinTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.bracketRepo.Save(ctx, tx, t.ID, bracket); err != nil {
			return err
		}
		for _, p := range seeded {
			if err := s.participantRepo.UpdateSeed(ctx, tx, p.ParticipantID, p.Seed); err != nil {
				return err
			}
		}
		if err := s.participantRepo.UpdateStatusByTournament(ctx, tx,
			t.ID, models.ParticipantRegistered, models.ParticipantActive); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusActive)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament started",
		"tournament_id", t.ID, "format", t.Format, "participants", len(participants))
	s.broadcast(t.ID, brackets.EventBracketUpdated, bracket)
	return nil
}

func (s *TournamentService) completeExhibition(ctx context.Context, t *models.Tournament, sole *models.Participant) error {
	results, err := prizes.CalculatePrizes(t.PrizePool, t.Distribution, []string{sole.ID})
	if err != nil {
		return err
	}
	winners := winnersFromResults(t.ID, results)
	err = repositories.WithinTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.winnerRepo.CreateBatch(ctx, tx, winners); err != nil {
			return err
		}
		if err := s.participantRepo.UpdateStatus(ctx, tx, sole.ID, models.ParticipantWinner); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusCompleted)
	})
	if err != nil {
		return err
	}
	s.logger.Info("exhibition auto-completed", "tournament_id", t.ID, "winner_id", sole.ID)
	s.payWinners(t, winners, map[string]*models.Participant{sole.ID: sole})
	s.broadcast(t.ID, brackets.EventTournamentCompleted, winners)
	return nil
}

// SubmitResult records a match outcome and runs every consequence: winner
// propagation, the next swiss round, the double-elimination bracket
// reset, and settlement once the bracket is complete.
func (s *TournamentService) SubmitResult(ctx context.Context, input SubmitResultInput) error {
	lock := s.lockFor(input.TournamentID)
	lock.Lock()

	t, bracket, err := s.loadActiveBracket(ctx, input.TournamentID)
	if err != nil {
		lock.Unlock()
		return err
	}

	var m *brackets.Match
	if input.Forfeit {
		m, err = brackets.ApplyForfeit(bracket, input.MatchUID, input.ForfeitingID)
	} else {
		m, err = brackets.ApplyResult(bracket, input.MatchUID, input.WinnerID, input.Score)
	}
	if err != nil {
		lock.Unlock()
		return mapBracketError(err)
	}

	// Swiss rounds are generated lazily once the previous one is decided.
	if t.Format == models.FormatSwiss &&
		bracket.RoundDecided(len(bracket.Rounds)) &&
		len(bracket.Rounds) < t.SwissRounds {
		seeds, err := s.seedNumbers(ctx, t.ID)
		if err != nil {
			lock.Unlock()
			return err
		}
		standings := brackets.ComputeStandings(bracket, seeds)
		if _, err := brackets.NextSwissRound(bracket, standings); err != nil {
			lock.Unlock()
			return err
		}
	}

	if bracket.NeedsBracketReset() {
		if _, err := bracket.AddBracketReset(); err != nil {
			lock.Unlock()
			return err
		}
	}

	if err := s.persistBracket(ctx, t.ID, bracket); err != nil {
		lock.Unlock()
		return err
	}

	complete := bracket.IsComplete()
	var winners []*models.TournamentWinner
	var byID map[string]*models.Participant
	if complete {
		winners, byID, err = s.settle(ctx, t, bracket)
		if err != nil {
			lock.Unlock()
			return err
		}
	}
	lock.Unlock()

	s.broadcast(t.ID, brackets.EventMatchUpdated, m)
	if complete {
		// Payouts run outside the lock; the bracket of record is already
		// committed and a failed transfer cannot change placements.
		s.payWinners(t, winners, byID)
		s.broadcast(t.ID, brackets.EventTournamentCompleted, winners)
	} else {
		s.broadcast(t.ID, brackets.EventBracketUpdated, bracket)
	}
	return nil
}

func (s *TournamentService) loadActiveBracket(ctx context.Context, tournamentID string) (*models.Tournament, *brackets.Bracket, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status != models.StatusActive {
		if t.Status == models.StatusCompleted || t.Status == models.StatusCancelled {
			return nil, nil, ErrTournamentFinished
		}
		return nil, nil, ErrTournamentNotActive
	}
	bracket, err := s.bracketRepo.Get(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, nil, ErrBracketNotFound
		}
		return nil, nil, err
	}
	return t, bracket, nil
}

// persistBracket rewrites every match row plus the round cursor. A result
// can touch matches far from the one submitted (bye cascades, reset
// rounds), so the whole bracket goes back in one transaction.
func (s *TournamentService) persistBracket(ctx context.Context, tournamentID string, bracket *brackets.Bracket) error {
	return repositories.WithinTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, round := range bracket.Rounds {
			if err := s.bracketRepo.AppendRound(ctx, tx, tournamentID, round, bracket.CurrentRound); err != nil {
				return err
			}
		}
		for _, m := range bracket.AllMatches() {
			if err := s.bracketRepo.UpdateMatch(ctx, tx, tournamentID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// settle computes final placements and prize amounts and commits them
// together with the completed status. Wallet payouts are NOT part of this
// transaction.
func (s *TournamentService) settle(ctx context.Context, t *models.Tournament, bracket *brackets.Bracket) ([]*models.TournamentWinner, map[string]*models.Participant, error) {
	seeds, err := s.seedNumbers(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	placements := brackets.FinalPlacements(bracket, seeds)
	results, err := prizes.CalculatePrizes(t.PrizePool, t.Distribution, placements)
	if err != nil {
		return nil, nil, err
	}
	winners := winnersFromResults(t.ID, results)

	participants, err := s.activeParticipants(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	var championID string
	if len(placements) > 0 {
		championID = placements[0]
	}

	err = repositories.WithinTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.winnerRepo.CreateBatch(ctx, tx, winners); err != nil {
			return err
		}
		if err := s.participantRepo.UpdateStatusByTournament(ctx, tx,
			t.ID, models.ParticipantActive, models.ParticipantEliminated); err != nil {
			return err
		}
		if championID != "" {
			if err := s.participantRepo.UpdateStatus(ctx, tx, championID, models.ParticipantWinner); err != nil {
				return err
			}
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusCompleted)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("tournament settled",
		"tournament_id", t.ID, "champion_id", championID, "prize_pool", t.PrizePool)
	return winners, byID, nil
}

// payWinners transfers every non-zero prize concurrently. Each payout is
// idempotent through its memo and recorded independently; one failure
// neither blocks the others nor changes any placement.
func (s *TournamentService) payWinners(t *models.Tournament, winners []*models.TournamentWinner, byID map[string]*models.Participant) {
	g := new(errgroup.Group)
	for _, w := range winners {
		if !isPositiveAmount(w.PrizeAmount) {
			continue
		}
		p, ok := byID[w.ParticipantID]
		if !ok {
			s.logger.Error("winner without participant record",
				"tournament_id", t.ID, "participant_id", w.ParticipantID)
			continue
		}
		w := w
		address := p.Address
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), walletCallTimeout)
			defer cancel()

			memo := fmt.Sprintf("prize:%s:%s", t.ID, w.ParticipantID)
			txID, err := s.wallet.Pay(ctx, address, w.PrizeAmount, memo)
			if err != nil {
				s.logger.Error("prize payout failed",
					"tournament_id", t.ID, "participant_id", w.ParticipantID,
					"amount", w.PrizeAmount, "error", err)
				return s.winnerRepo.UpdatePayout(context.Background(), nil,
					t.ID, w.ParticipantID, models.PayoutFailed, nil, nil)
			}
			paidAt := s.clock.Now()
			return s.winnerRepo.UpdatePayout(context.Background(), nil,
				t.ID, w.ParticipantID, models.PayoutPaid, &txID, &paidAt)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("payout bookkeeping failed", "tournament_id", t.ID, "error", err)
	}
}

// Cancel aborts a tournament that has not yet gone active and refunds
// every paid entry fee.
func (s *TournamentService) Cancel(ctx context.Context, tournamentID string) error {
	lock := s.lockFor(tournamentID)
	lock.Lock()
	defer lock.Unlock()
	return s.cancelLocked(ctx, tournamentID)
}

func (s *TournamentService) cancelLocked(ctx context.Context, tournamentID string) error {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.Status == models.StatusCompleted || t.Status == models.StatusCancelled {
		return ErrTournamentFinished
	}
	// Once a bracket is live, results and escrowed fees are in play;
	// cancellation is only legal before the tournament goes active.
	if t.Status == models.StatusActive {
		return ErrTournamentStarted
	}

	participants, err := s.participantRepo.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return err
	}

	err = repositories.WithinTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.participantRepo.UpdateStatusByTournament(ctx, tx,
			t.ID, models.ParticipantRegistered, models.ParticipantWithdrawn); err != nil {
			return err
		}
		if err := s.participantRepo.UpdateStatusByTournament(ctx, tx,
			t.ID, models.ParticipantActive, models.ParticipantWithdrawn); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusCancelled)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament cancelled", "tournament_id", t.ID)

	g := new(errgroup.Group)
	for _, p := range participants {
		if !p.EntryFeePaid || p.Status == models.ParticipantWithdrawn {
			continue
		}
		p := p
		g.Go(func() error {
			refundCtx, cancel := context.WithTimeout(context.Background(), walletCallTimeout)
			defer cancel()
			memo := fmt.Sprintf("refund:%s:%s", t.ID, p.Address)
			if _, err := s.wallet.Pay(refundCtx, p.Address, t.EntryFee, memo); err != nil {
				s.logger.Error("entry fee refund failed",
					"tournament_id", t.ID, "participant_id", p.ID, "error", err)
				return fmt.Errorf("%w: participant %s", ErrEntryFeeNotRefunded, p.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.broadcast(t.ID, brackets.EventTournamentCompleted, nil)
	return nil
}

// AutoUpdateTournamentStatusesByDates advances every tournament whose
// status lags its configured dates. Called periodically by the scheduler.
func (s *TournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) {
	now := s.clock.Now()
	due, err := s.tournamentRepo.GetTournamentsForAutoStatusUpdate(ctx, nil, now)
	if err != nil {
		s.logger.Error("auto status scan failed", "error", err)
		return
	}
	for _, t := range due {
		switch t.Status {
		case models.StatusUpcoming:
			if err := s.OpenRegistration(ctx, t.ID); err != nil {
				s.logger.Error("auto open registration failed", "tournament_id", t.ID, "error", err)
			}
		case models.StatusRegistration:
			lock := s.lockFor(t.ID)
			lock.Lock()
			err := s.startLocked(ctx, t.ID)
			if errors.Is(err, ErrNotEnoughPlayers) {
				// Nobody to play: cancel and refund instead of starting.
				err = s.cancelLocked(ctx, t.ID)
			}
			lock.Unlock()
			if err != nil {
				s.logger.Error("auto start failed", "tournament_id", t.ID, "error", err)
			}
		}
	}
}

func (s *TournamentService) getTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

// activeParticipants lists everyone still in the running, in registration
// order.
func (s *TournamentService) activeParticipants(ctx context.Context, tournamentID string) ([]*models.Participant, error) {
	all, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Participant, 0, len(all))
	for _, p := range all {
		if p.Status == models.ParticipantRegistered || p.Status == models.ParticipantActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// seedNumbers maps participant ids to the ranks assigned at start, used
// as the seed for standings tie-breaks.
func (s *TournamentService) seedNumbers(ctx context.Context, tournamentID string) (map[string]int, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return assignedSeeds(participants), nil
}

func winnersFromResults(tournamentID string, results []models.PrizeResult) []*models.TournamentWinner {
	winners := make([]*models.TournamentWinner, len(results))
	for i, r := range results {
		winners[i] = &models.TournamentWinner{
			TournamentID:  tournamentID,
			ParticipantID: r.PlayerID,
			Placement:     r.Placement,
			PrizeAmount:   r.PrizeAmount,
			Percentage:    r.Percentage,
			PayoutStatus:  models.PayoutPending,
		}
	}
	return winners
}

func mapBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrUnknownMatch):
		return ErrMatchNotFound
	case errors.Is(err, brackets.ErrMatchClosed):
		return ErrResultAlreadySet
	case errors.Is(err, brackets.ErrMatchNotReady),
		errors.Is(err, brackets.ErrWinnerNotInMatch):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}

func isValidAmount(s string) bool {
	v, ok := new(big.Int).SetString(s, 10)
	return ok && v.Sign() >= 0
}

func isPositiveAmount(s string) bool {
	v, ok := new(big.Int).SetString(s, 10)
	return ok && v.Sign() > 0
}

func addAmounts(a, b string) (string, error) {
	x, okA := new(big.Int).SetString(a, 10)
	y, okB := new(big.Int).SetString(b, 10)
	if !okA || !okB {
		return "", fmt.Errorf("invalid amount arithmetic: %q + %q", a, b)
	}
	return new(big.Int).Add(x, y).String(), nil
}
