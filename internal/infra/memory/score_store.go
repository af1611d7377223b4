package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"longevity-frame/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore. Records are
// kept in insertion order and never mutated; "best" is computed on read.
type ScoreStore struct {
	now     func() time.Time
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return NewScoreStoreWithClock(time.Now)
}

// NewScoreStoreWithClock allows deterministic timestamps in tests.
func NewScoreStoreWithClock(now func() time.Time) *ScoreStore {
	return &ScoreStore{now: now}
}

func (s *ScoreStore) Save(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	rec.Answers = append([]domain.Answer{}, rec.Answers...)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Timestamp = s.now()
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *ScoreStore) ForUser(_ context.Context, userID int64) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreRecord, 0)
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].UserID == userID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *ScoreStore) Leaderboard(_ context.Context, limit int) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	best := s.bestLocked()
	s.mu.RUnlock()

	if limit > 0 && len(best) > limit {
		best = best[:limit]
	}
	return best, nil
}

func (s *ScoreStore) Rank(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	best := s.bestLocked()
	s.mu.RUnlock()

	for i, rec := range best {
		if rec.UserID == userID {
			return i + 1, nil
		}
	}
	return -1, nil
}

// Len reports the number of stored records.
func (s *ScoreStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// bestLocked returns each user's first maximum-score record ordered by score
// descending. Ties keep the order in which users first appeared.
func (s *ScoreStore) bestLocked() []domain.ScoreRecord {
	index := make(map[int64]int)
	best := make([]domain.ScoreRecord, 0)
	for _, rec := range s.records {
		i, ok := index[rec.UserID]
		if !ok {
			index[rec.UserID] = len(best)
			best = append(best, rec)
			continue
		}
		if rec.Score > best[i].Score {
			best[i] = rec
		}
	}
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Score > best[j].Score
	})
	return best
}
