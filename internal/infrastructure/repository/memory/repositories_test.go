package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
	"github.com/lunchpool/pickem/internal/domain/week"
)

func TestTieBreakerRepository_UpsertEnforcesUniqueGuess(t *testing.T) {
	t.Parallel()

	repo := NewTieBreakerRepository()
	ctx := context.Background()

	if err := repo.Upsert(ctx, tiebreaker.TieBreaker{UserID: 1, WeekID: 10, GuessPoints: 44}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(ctx, tiebreaker.TieBreaker{UserID: 2, WeekID: 10, GuessPoints: 44}); !errors.Is(err, tiebreaker.ErrDuplicateGuess) {
		t.Fatalf("unexpected error: got=%v want=%v", err, tiebreaker.ErrDuplicateGuess)
	}

	// Same user replacing their own guess is fine, and keeps the row id.
	if err := repo.Upsert(ctx, tiebreaker.TieBreaker{UserID: 1, WeekID: 10, GuessPoints: 51}); err != nil {
		t.Fatalf("replace upsert: %v", err)
	}
	got, ok, _ := repo.GetByUserAndWeek(ctx, 1, 10)
	if !ok || got.GuessPoints != 51 || got.ID != 1 {
		t.Fatalf("unexpected row after replace: %+v ok=%v", got, ok)
	}

	// The old guess value is free again.
	if err := repo.Upsert(ctx, tiebreaker.TieBreaker{UserID: 2, WeekID: 10, GuessPoints: 44}); err != nil {
		t.Fatalf("reclaim freed guess: %v", err)
	}
}

func TestWeekRepository_InsertRejectsDuplicateNaturalKey(t *testing.T) {
	t.Parallel()

	repo := NewWeekRepository()
	ctx := context.Background()

	if _, err := repo.Insert(ctx, week.Week{SeasonID: 1, Number: 3, Segment: week.SegmentRegular}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := repo.Insert(ctx, week.Week{SeasonID: 1, Number: 3, Segment: week.SegmentRegular}); err == nil {
		t.Fatal("expected duplicate natural key to be rejected")
	}
	if _, err := repo.Insert(ctx, week.Week{SeasonID: 1, Number: 3, Segment: week.SegmentPostseason}); err != nil {
		t.Fatalf("different segment should insert: %v", err)
	}
}
