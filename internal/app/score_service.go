package app

import (
	"context"
	"fmt"
	"time"

	"longevity-frame/internal/domain"
)

// DefaultLeaderboardLimit is used when a caller does not ask for a size.
const DefaultLeaderboardLimit = 10

// ScoreStore abstracts the append-only ledger of completed attempts
// (in-memory, Redis, etc). Implementations must be safe for concurrent use.
type ScoreStore interface {
	// Save appends rec, stamping it with the store's clock.
	Save(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error)
	// ForUser returns every record of userID, most recent first.
	ForUser(ctx context.Context, userID int64) ([]domain.ScoreRecord, error)
	// Leaderboard returns each user's best record by descending score.
	// A limit <= 0 returns the full ordering.
	Leaderboard(ctx context.Context, limit int) ([]domain.ScoreRecord, error)
	// Rank is the 1-based position of userID in the full leaderboard, or -1.
	Rank(ctx context.Context, userID int64) (int, error)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// PersistRequest asks for an answer set to be scored and saved for a user.
type PersistRequest struct {
	UserID   int64
	Username string
	Answers  []domain.Answer
}

// ScoreService contains the score persistence and leaderboard use cases.
type ScoreService struct {
	store  ScoreStore
	banks  BankRepository
	bankID string
	hub    *LeaderboardHub
}

func NewScoreService(store ScoreStore, banks BankRepository, bankID string, hub *LeaderboardHub) *ScoreService {
	if hub == nil {
		hub = NewLeaderboardHub()
	}
	return &ScoreService{store: store, banks: banks, bankID: bankID, hub: hub}
}

// Record saves a completed attempt and notifies leaderboard subscribers.
func (s *ScoreService) Record(ctx context.Context, who domain.Identity, result domain.ScoreResult, answers []domain.Answer, bankVersion string) error {
	_, err := s.store.Save(ctx, domain.ScoreRecord{
		UserID:      who.UserID,
		Username:    who.Username,
		Score:       result.Score,
		Tier:        result.Tier,
		Badge:       result.Badge,
		BankVersion: bankVersion,
		Answers:     answers,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.hub.Notify()
	return nil
}

// RecordAttempt scores req.Answers against the current bank and saves the result.
func (s *ScoreService) RecordAttempt(ctx context.Context, req PersistRequest) (domain.ScoreResult, error) {
	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	result := ResultForScore(NewScorer(bank).CalculateScore(req.Answers))
	who := domain.Identity{UserID: req.UserID, Username: req.Username}
	if err := s.Record(ctx, who, result, req.Answers, bank.Version); err != nil {
		return result, err
	}
	return result, nil
}

// Leaderboard returns the public leaderboard view.
func (s *ScoreService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	records, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:    rec.UserID,
			Username:  rec.Username,
			Score:     rec.Score,
			Tier:      rec.Tier,
			Badge:     rec.Badge,
			Timestamp: rec.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return entries, nil
}

// History returns the caller's own records, most recent first.
func (s *ScoreService) History(ctx context.Context, who *domain.Identity) ([]domain.HistoryEntry, error) {
	if who == nil {
		return nil, domain.ErrUnauthorized
	}
	records, err := s.store.ForUser(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.HistoryEntry{
			Score:     rec.Score,
			Tier:      rec.Tier,
			Badge:     rec.Badge,
			Timestamp: rec.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return entries, nil
}

// Rank returns the caller's leaderboard position, or -1 when unranked.
func (s *ScoreService) Rank(ctx context.Context, who *domain.Identity) (int, error) {
	if who == nil {
		return 0, domain.ErrUnauthorized
	}
	return s.store.Rank(ctx, who.UserID)
}

// Subscribe returns a channel signalled whenever the leaderboard may have changed.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ScoreService) Subscribe() (<-chan struct{}, func()) {
	return s.hub.Subscribe()
}
