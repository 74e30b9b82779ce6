package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/pick"
	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/platform/logging"
)

type PickSelection struct {
	GameID       int64 `json:"game_id"`
	ChosenTeamID int64 `json:"chosen_team_id"`
}

type SavePicksInput struct {
	WeekID     int64           `json:"week_id"`
	Picks      []PickSelection `json:"picks"`
	TieBreaker *int            `json:"tiebreaker,omitempty"`
}

type SavePicksResult struct {
	Saved           int  `json:"saved"`
	Dropped         int  `json:"dropped"`
	TieBreakerSaved bool `json:"tiebreaker_saved"`
}

type WeekPicks struct {
	WeekID     int64
	Picks      []pick.Pick
	TieBreaker *int
}

// PickService stores a user's picks and tiebreak guess for a week. Writes are
// refused once the week's first kickoff has passed, except for admins.
type PickService struct {
	weekRepo       week.Repository
	gameRepo       game.Repository
	pickRepo       pick.Repository
	tiebreakerRepo tiebreaker.Repository
	logger         *logging.Logger
	now            func() time.Time
}

func NewPickService(
	weekRepo week.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	tiebreakerRepo tiebreaker.Repository,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PickService{
		weekRepo:       weekRepo,
		gameRepo:       gameRepo,
		pickRepo:       pickRepo,
		tiebreakerRepo: tiebreakerRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// SavePicks upserts the caller's selections for the week. Selections naming a
// game outside the week or a team not playing in that game are dropped
// per-item rather than failing the batch. The tiebreak guess is written first
// so a duplicate-guess conflict leaves nothing persisted.
func (s *PickService) SavePicks(ctx context.Context, principal user.Principal, input SavePicksInput) (SavePicksResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SavePicks")
	defer span.End()

	if principal.UserID == 0 {
		return SavePicksResult{}, fmt.Errorf("%w: missing principal", ErrUnauthorized)
	}
	if input.WeekID == 0 {
		return SavePicksResult{}, fmt.Errorf("%w: week_id is required", ErrInvalidInput)
	}

	wk, ok, err := s.weekRepo.GetByID(ctx, input.WeekID)
	if err != nil {
		return SavePicksResult{}, fmt.Errorf("get week id=%d: %w", input.WeekID, err)
	}
	if !ok {
		return SavePicksResult{}, fmt.Errorf("%w: week id=%d", ErrNotFound, input.WeekID)
	}
	if wk.Locked(s.now().UTC()) && !principal.IsAdmin {
		return SavePicksResult{}, fmt.Errorf("%w: week %d kicked off at %s", ErrLocked, wk.Number, wk.FirstKickoffAt.Format(time.RFC3339))
	}

	var result SavePicksResult

	if input.TieBreaker != nil {
		guess := tiebreaker.TieBreaker{
			UserID:      principal.UserID,
			WeekID:      wk.ID,
			GuessPoints: *input.TieBreaker,
		}
		if err := guess.Validate(); err != nil {
			return SavePicksResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.tiebreakerRepo.Upsert(ctx, guess); err != nil {
			if errors.Is(err, tiebreaker.ErrDuplicateGuess) {
				return SavePicksResult{}, fmt.Errorf("%w: tiebreaker guess %d is already taken for this week", ErrConflict, *input.TieBreaker)
			}
			return SavePicksResult{}, fmt.Errorf("upsert tiebreaker week id=%d: %w", wk.ID, err)
		}
		result.TieBreakerSaved = true
	}

	if len(input.Picks) == 0 {
		return result, nil
	}

	games, err := s.gameRepo.ListByWeek(ctx, wk.ID)
	if err != nil {
		return result, fmt.Errorf("list games for week id=%d: %w", wk.ID, err)
	}
	gamesByID := make(map[int64]game.Game, len(games))
	for _, item := range games {
		gamesByID[item.ID] = item
	}

	for _, selection := range input.Picks {
		target, inWeek := gamesByID[selection.GameID]
		if !inWeek || !target.HasParticipant(selection.ChosenTeamID) {
			result.Dropped++
			s.logger.DebugContext(ctx, "dropped invalid pick selection",
				"user_id", principal.UserID,
				"week_id", wk.ID,
				"game_id", selection.GameID,
				"chosen_team_id", selection.ChosenTeamID,
			)
			continue
		}

		row := pick.Pick{
			UserID:       principal.UserID,
			GameID:       selection.GameID,
			ChosenTeamID: selection.ChosenTeamID,
		}
		if err := s.pickRepo.Upsert(ctx, row); err != nil {
			return result, fmt.Errorf("upsert pick game id=%d: %w", selection.GameID, err)
		}
		result.Saved++
	}

	s.logger.DebugContext(ctx, "picks saved",
		"user_id", principal.UserID,
		"week_id", wk.ID,
		"saved", result.Saved,
		"dropped", result.Dropped,
		"tiebreaker_saved", result.TieBreakerSaved,
	)
	return result, nil
}

// WeekPicksFor returns the caller's stored picks and tiebreak guess for the
// week's games.
func (s *PickService) WeekPicksFor(ctx context.Context, principal user.Principal, weekID int64) (WeekPicks, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.WeekPicksFor")
	defer span.End()

	if principal.UserID == 0 {
		return WeekPicks{}, fmt.Errorf("%w: missing principal", ErrUnauthorized)
	}

	wk, ok, err := s.weekRepo.GetByID(ctx, weekID)
	if err != nil {
		return WeekPicks{}, fmt.Errorf("get week id=%d: %w", weekID, err)
	}
	if !ok {
		return WeekPicks{}, fmt.Errorf("%w: week id=%d", ErrNotFound, weekID)
	}

	games, err := s.gameRepo.ListByWeek(ctx, wk.ID)
	if err != nil {
		return WeekPicks{}, fmt.Errorf("list games for week id=%d: %w", wk.ID, err)
	}
	gameIDs := make([]int64, 0, len(games))
	for _, item := range games {
		gameIDs = append(gameIDs, item.ID)
	}

	out := WeekPicks{WeekID: wk.ID}
	if len(gameIDs) > 0 {
		picks, err := s.pickRepo.ListByUserAndGameIDs(ctx, principal.UserID, gameIDs)
		if err != nil {
			return WeekPicks{}, fmt.Errorf("list picks for week id=%d: %w", wk.ID, err)
		}
		out.Picks = picks
	}

	guess, ok, err := s.tiebreakerRepo.GetByUserAndWeek(ctx, principal.UserID, wk.ID)
	if err != nil {
		return WeekPicks{}, fmt.Errorf("get tiebreaker week id=%d: %w", wk.ID, err)
	}
	if ok {
		value := guess.GuessPoints
		out.TieBreaker = &value
	}
	return out, nil
}
