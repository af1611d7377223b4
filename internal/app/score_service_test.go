package app_test

import (
	"context"
	"errors"
	"testing"

	"longevity-frame/internal/app"
	"longevity-frame/internal/domain"
	"longevity-frame/internal/infra/memory"
)

func TestLeaderboardScenario(t *testing.T) {
	ctx := context.Background()
	_, service := newTestController(memory.NewScoreStore())

	alice := domain.Identity{UserID: 1, Username: "alice"}
	bob := domain.Identity{UserID: 2, Username: "bob"}
	if err := service.Record(ctx, alice, app.ResultForScore(70), nil, "v1"); err != nil {
		t.Fatalf("record alice: %v", err)
	}
	if err := service.Record(ctx, bob, app.ResultForScore(90), nil, "v1"); err != nil {
		t.Fatalf("record bob: %v", err)
	}

	top, err := service.Leaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 1 || top[0].UserID != 2 || top[0].Score != 90 || top[0].Badge != "Platinum" {
		t.Fatalf("expected only bob, got %+v", top)
	}
	if top[0].Timestamp == "" {
		t.Fatalf("expected ISO timestamp")
	}

	rank, err := service.Rank(ctx, &alice)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("expected alice rank 2, got %d", rank)
	}
}

func TestLeaderboardDefaultLimit(t *testing.T) {
	ctx := context.Background()
	_, service := newTestController(memory.NewScoreStore())
	for i := 0; i < 15; i++ {
		_ = service.Record(ctx, domain.Identity{UserID: int64(i)}, app.ResultForScore(i), nil, "v1")
	}
	entries, err := service.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != app.DefaultLeaderboardLimit {
		t.Fatalf("expected %d entries, got %d", app.DefaultLeaderboardLimit, len(entries))
	}
}

func TestIdentityScopedQueriesRequireIdentity(t *testing.T) {
	ctx := context.Background()
	_, service := newTestController(memory.NewScoreStore())

	if _, err := service.Rank(ctx, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized rank, got %v", err)
	}
	if _, err := service.History(ctx, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized history, got %v", err)
	}
}

func TestRecordAttemptScoresAndSaves(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScoreStore()
	_, service := newTestController(store)

	result, err := service.RecordAttempt(ctx, app.PersistRequest{
		UserID:   5,
		Username: "erin",
		Answers:  bestAnswers(domain.DefaultBank()),
	})
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("expected 100, got %d", result.Score)
	}

	history, err := service.History(ctx, &domain.Identity{UserID: 5})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Tier != domain.TierLongevityChampion {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestRecordNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	_, service := newTestController(memory.NewScoreStore())

	ch, cancel := service.Subscribe()
	defer cancel()
	<-ch

	_ = service.Record(ctx, domain.Identity{UserID: 1}, app.ResultForScore(50), nil, "v1")
	select {
	case <-ch:
	default:
		t.Fatalf("expected leaderboard signal after record")
	}
}

func TestRecordWrapsStoreErrors(t *testing.T) {
	_, service := newTestController(failingStore{})
	err := service.Record(context.Background(), domain.Identity{UserID: 1}, app.ResultForScore(10), nil, "v1")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, errConnRefused) {
		t.Fatalf("expected the store error to stay in the chain, got %v", err)
	}
}
