package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/pick"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/domain/week"
)

const leaderboardSize = 10

type LeaderboardRow struct {
	UserID   int64   `json:"user_id"`
	Name     string  `json:"name"`
	Correct  int     `json:"correct"`
	Picks    int     `json:"picks"`
	Accuracy float64 `json:"accuracy"`
}

type LunchStatus string

const (
	LunchStatusNoWeek  LunchStatus = "no_week"
	LunchStatusNoGames LunchStatus = "no_games"
	LunchStatusPending LunchStatus = "pending"
	LunchStatusDecided LunchStatus = "decided"
)

type LunchParticipant struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type LunchOutcome struct {
	Status                 LunchStatus        `json:"status"`
	TotalGames             int                `json:"total_games"`
	DecidedGames           int                `json:"decided_games"`
	Winners                []LunchParticipant `json:"winners,omitempty"`
	Losers                 []LunchParticipant `json:"losers,omitempty"`
	ActualTotal            *int               `json:"actual_total,omitempty"`
	TiebreakerApplied      bool               `json:"tiebreaker_applied,omitempty"`
	LoserTiebreakerApplied bool               `json:"loser_tiebreaker_applied,omitempty"`
}

// OutcomeService answers who stands where: the season leaderboard, the weekly
// lunch verdict, and the week-browsing queries the dashboard needs. It is a
// pure read engine; absence of games, picks or tiebreakers degrades to an
// explicit pending result, never an error.
type OutcomeService struct {
	seasonRepo     season.Repository
	weekRepo       week.Repository
	gameRepo       game.Repository
	pickRepo       pick.Repository
	tiebreakerRepo tiebreaker.Repository
	userRepo       user.Repository
	now            func() time.Time
}

func NewOutcomeService(
	seasonRepo season.Repository,
	weekRepo week.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	tiebreakerRepo tiebreaker.Repository,
	userRepo user.Repository,
) *OutcomeService {
	return &OutcomeService{
		seasonRepo:     seasonRepo,
		weekRepo:       weekRepo,
		gameRepo:       gameRepo,
		pickRepo:       pickRepo,
		tiebreakerRepo: tiebreakerRepo,
		userRepo:       userRepo,
		now:            time.Now,
	}
}

// CurrentWeek resolves the week the pool is "on": the next upcoming week of
// the active season, then that season's last week, then the next upcoming or
// most recent week across all seasons. Scoping to the active season first
// keeps the selector from jumping into an old season's leftovers.
func (s *OutcomeService) CurrentWeek(ctx context.Context) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.CurrentWeek")
	defer span.End()

	now := s.now().UTC()

	ssn, ok, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return week.Week{}, fmt.Errorf("get active season: %w", err)
	}
	if !ok {
		ssn, ok, err = s.seasonRepo.GetLatest(ctx)
		if err != nil {
			return week.Week{}, fmt.Errorf("get latest season: %w", err)
		}
	}
	if ok {
		weeks, err := s.weekRepo.ListBySeason(ctx, ssn.ID)
		if err != nil {
			return week.Week{}, fmt.Errorf("list weeks for season id=%d: %w", ssn.ID, err)
		}
		if selected, found := pickCurrentFrom(weeks, now); found {
			return selected, nil
		}
	}

	upcoming, ok, err := s.weekRepo.FirstUpcoming(ctx, now)
	if err != nil {
		return week.Week{}, fmt.Errorf("get upcoming week: %w", err)
	}
	if ok {
		return upcoming, nil
	}
	latest, ok, err := s.weekRepo.Latest(ctx)
	if err != nil {
		return week.Week{}, fmt.Errorf("get latest week: %w", err)
	}
	if !ok {
		return week.Week{}, fmt.Errorf("%w: no weeks exist", ErrNotFound)
	}
	return latest, nil
}

func (s *OutcomeService) WeekByKey(ctx context.Context, year int, weekNumber int, segment week.Segment) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.WeekByKey")
	defer span.End()

	if weekNumber <= 0 {
		return week.Week{}, fmt.Errorf("%w: week number must be greater than zero", ErrInvalidInput)
	}
	if !segment.Valid() {
		return week.Week{}, fmt.Errorf("%w: unknown season segment %d", ErrInvalidInput, int(segment))
	}

	ssn, ok, err := s.seasonRepo.GetByYear(ctx, year)
	if err != nil {
		return week.Week{}, fmt.Errorf("get season year=%d: %w", year, err)
	}
	if !ok {
		return week.Week{}, fmt.Errorf("%w: season %d", ErrNotFound, year)
	}

	wk, ok, err := s.weekRepo.GetByNaturalKey(ctx, ssn.ID, weekNumber, segment)
	if err != nil {
		return week.Week{}, fmt.Errorf("get week year=%d number=%d segment=%s: %w", year, weekNumber, segment, err)
	}
	if !ok {
		return week.Week{}, fmt.Errorf("%w: week %d of %s %d", ErrNotFound, weekNumber, segment, year)
	}
	return wk, nil
}

func (s *OutcomeService) SeasonWeeks(ctx context.Context, seasonID int64) ([]week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.SeasonWeeks")
	defer span.End()

	weeks, err := s.weekRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list weeks for season id=%d: %w", seasonID, err)
	}
	return weeks, nil
}

func (s *OutcomeService) WeekGames(ctx context.Context, weekID int64) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.WeekGames")
	defer span.End()

	games, err := s.gameRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("list games for week id=%d: %w", weekID, err)
	}
	return games, nil
}

// SeasonLeaderboard ranks users over every decided final of the season the
// selected week belongs to (the active or latest season when no week is
// selected). Users with zero qualifying picks never appear. The second return
// is the count of decided games considered.
func (s *OutcomeService) SeasonLeaderboard(ctx context.Context, selected *week.Week) ([]LeaderboardRow, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.SeasonLeaderboard")
	defer span.End()

	ssn, ok, err := s.resolveSeason(ctx, selected)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []LeaderboardRow{}, 0, nil
	}

	weeks, err := s.weekRepo.ListBySeason(ctx, ssn.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("list weeks for season id=%d: %w", ssn.ID, err)
	}
	weekIDs := make([]int64, 0, len(weeks))
	for _, wk := range weeks {
		weekIDs = append(weekIDs, wk.ID)
	}
	games, err := s.gameRepo.ListByWeekIDs(ctx, weekIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("list games for season id=%d: %w", ssn.ID, err)
	}

	winnersByGame := make(map[int64]int64)
	decidedIDs := make([]int64, 0, len(games))
	for _, item := range games {
		if winner := item.WinnerTeamID(); winner != 0 {
			winnersByGame[item.ID] = winner
			decidedIDs = append(decidedIDs, item.ID)
		}
	}
	if len(decidedIDs) == 0 {
		return []LeaderboardRow{}, 0, nil
	}

	picks, err := s.pickRepo.ListByGameIDs(ctx, decidedIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("list picks for season id=%d: %w", ssn.ID, err)
	}

	correctCounts := make(map[int64]int)
	pickCounts := make(map[int64]int)
	for _, p := range picks {
		winner, decided := winnersByGame[p.GameID]
		if !decided {
			continue
		}
		pickCounts[p.UserID]++
		if p.ChosenTeamID == winner {
			correctCounts[p.UserID]++
		}
	}
	if len(pickCounts) == 0 {
		return []LeaderboardRow{}, len(decidedIDs), nil
	}

	names, err := s.userNames(ctx)
	if err != nil {
		return nil, 0, err
	}

	board := make([]LeaderboardRow, 0, len(pickCounts))
	for userID, picked := range pickCounts {
		correct := correctCounts[userID]
		board = append(board, LeaderboardRow{
			UserID:   userID,
			Name:     displayName(names, userID),
			Correct:  correct,
			Picks:    picked,
			Accuracy: float64(correct) / float64(picked),
		})
	}

	sort.SliceStable(board, func(i, j int) bool {
		if board[i].Correct != board[j].Correct {
			return board[i].Correct > board[j].Correct
		}
		if board[i].Accuracy != board[j].Accuracy {
			return board[i].Accuracy > board[j].Accuracy
		}
		return strings.ToLower(board[i].Name) < strings.ToLower(board[j].Name)
	})

	if len(board) > leaderboardSize {
		board = board[:leaderboardSize]
	}
	return board, len(decidedIDs), nil
}

// WeeklyLunch decides who buys lunch for the given week. The week must be
// fully final before anything is decided; partial weeks stay pending no
// matter how lopsided the counts are. Tiebreak guesses resolve ties under the
// "closest without going over" rule for winners and its inverse for losers,
// where an over-guess beats no guess at all for staying out of last place.
func (s *OutcomeService) WeeklyLunch(ctx context.Context, selected *week.Week) (LunchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.WeeklyLunch")
	defer span.End()

	if selected == nil {
		return LunchOutcome{Status: LunchStatusNoWeek}, nil
	}

	games, err := s.gameRepo.ListByWeek(ctx, selected.ID)
	if err != nil {
		return LunchOutcome{}, fmt.Errorf("list games for week id=%d: %w", selected.ID, err)
	}
	totalGames := len(games)
	if totalGames == 0 {
		return LunchOutcome{Status: LunchStatusNoGames}, nil
	}

	finals := make([]game.Game, 0, len(games))
	for _, item := range games {
		if item.IsFinal() {
			finals = append(finals, item)
		}
	}
	decidedGames := len(finals)
	finalized := decidedGames == totalGames

	winnersByGame := make(map[int64]int64)
	decidedIDs := make([]int64, 0, len(finals))
	for _, item := range finals {
		if winner := item.WinnerTeamID(); winner != 0 {
			winnersByGame[item.ID] = winner
			decidedIDs = append(decidedIDs, item.ID)
		}
	}

	var picks []pick.Pick
	if len(decidedIDs) > 0 {
		picks, err = s.pickRepo.ListByGameIDs(ctx, decidedIDs)
		if err != nil {
			return LunchOutcome{}, fmt.Errorf("list picks for week id=%d: %w", selected.ID, err)
		}
	}

	correctCounts := make(map[int64]int)
	pickCounts := make(map[int64]int)
	for _, p := range picks {
		winner, decided := winnersByGame[p.GameID]
		if !decided {
			continue
		}
		pickCounts[p.UserID]++
		if p.ChosenTeamID == winner {
			correctCounts[p.UserID]++
		}
	}
	if len(pickCounts) == 0 {
		return LunchOutcome{
			Status:       LunchStatusPending,
			TotalGames:   totalGames,
			DecidedGames: decidedGames,
		}, nil
	}

	names, err := s.userNames(ctx)
	if err != nil {
		return LunchOutcome{}, err
	}

	guesses, err := s.tiebreakerRepo.ListByWeek(ctx, selected.ID)
	if err != nil {
		return LunchOutcome{}, fmt.Errorf("list tiebreakers for week id=%d: %w", selected.ID, err)
	}
	guessByUser := make(map[int64]int, len(guesses))
	for _, tb := range guesses {
		if _, participates := pickCounts[tb.UserID]; participates {
			guessByUser[tb.UserID] = tb.GuessPoints
		}
	}

	// Actual total: combined score of the chronologically last final game,
	// the stand-in for the traditional Monday night total. Only meaningful
	// once the whole week is final.
	var actualTotal *int
	if finalized && len(finals) > 0 {
		last := finals[0]
		for _, item := range finals[1:] {
			if item.StartTime.After(last.StartTime) {
				last = item
			}
		}
		combined := last.HomeScore + last.AwayScore
		actualTotal = &combined
	}

	type lunchRow struct {
		userID  int64
		name    string
		correct int
		guess   *int
	}
	rows := make([]lunchRow, 0, len(pickCounts))
	for userID := range pickCounts {
		row := lunchRow{
			userID:  userID,
			name:    displayName(names, userID),
			correct: correctCounts[userID],
		}
		if guess, has := guessByUser[userID]; has {
			value := guess
			row.guess = &value
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		left, right := strings.ToLower(rows[i].name), strings.ToLower(rows[j].name)
		if left != right {
			return left < right
		}
		return rows[i].userID < rows[j].userID
	})

	maxCorrect, minCorrect := rows[0].correct, rows[0].correct
	for _, row := range rows[1:] {
		if row.correct > maxCorrect {
			maxCorrect = row.correct
		}
		if row.correct < minCorrect {
			minCorrect = row.correct
		}
	}

	var winners, losers []lunchRow
	for _, row := range rows {
		if row.correct == maxCorrect {
			winners = append(winners, row)
		}
	}
	if len(rows) > 1 {
		for _, row := range rows {
			if row.correct == minCorrect {
				losers = append(losers, row)
			}
		}
	}

	outcome := LunchOutcome{
		TotalGames:   totalGames,
		DecidedGames: decidedGames,
		ActualTotal:  actualTotal,
	}

	if finalized && len(winners) > 1 && actualTotal != nil {
		var best *lunchRow
		for idx := range winners {
			row := &winners[idx]
			if row.guess == nil || *row.guess > *actualTotal {
				continue
			}
			if best == nil || *row.guess > *best.guess {
				best = row
			}
		}
		// The per-week guess uniqueness constraint means at most one winner
		// survives here. If nobody guessed at or under the total, the whole
		// tied group stands.
		if best != nil {
			winners = []lunchRow{*best}
			outcome.TiebreakerApplied = true
		}
	}

	if finalized && len(losers) > 1 && actualTotal != nil {
		worst := losers[0]
		worstTier, worstDist := lossBadness(worst.guess, *actualTotal)
		for _, row := range losers[1:] {
			tier, dist := lossBadness(row.guess, *actualTotal)
			if tier > worstTier || (tier == worstTier && dist > worstDist) {
				worst = row
				worstTier, worstDist = tier, dist
			}
		}
		losers = []lunchRow{worst}
		outcome.LoserTiebreakerApplied = true
	}

	for _, row := range winners {
		outcome.Winners = append(outcome.Winners, LunchParticipant{UserID: row.userID, Name: row.name})
	}
	for _, row := range losers {
		outcome.Losers = append(outcome.Losers, LunchParticipant{UserID: row.userID, Name: row.name})
	}

	if finalized && len(outcome.Winners) > 0 {
		outcome.Status = LunchStatusDecided
	} else {
		outcome.Status = LunchStatusPending
	}
	return outcome, nil
}

// lossBadness ranks how badly a tiebreak guess missed. Tier 1 is at or under
// the actual total ordered by distance below it, tier 2 is over ordered by
// distance above, tier 3 is no guess at all. Higher is worse.
func lossBadness(guess *int, actualTotal int) (int, int) {
	if guess == nil {
		return 3, 0
	}
	if *guess <= actualTotal {
		return 1, actualTotal - *guess
	}
	return 2, *guess - actualTotal
}

func (s *OutcomeService) resolveSeason(ctx context.Context, selected *week.Week) (season.Season, bool, error) {
	if selected != nil {
		ssn, ok, err := s.seasonRepo.GetByID(ctx, selected.SeasonID)
		if err != nil {
			return season.Season{}, false, fmt.Errorf("get season id=%d: %w", selected.SeasonID, err)
		}
		return ssn, ok, nil
	}

	ssn, ok, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, false, fmt.Errorf("get active season: %w", err)
	}
	if ok {
		return ssn, true, nil
	}
	ssn, ok, err = s.seasonRepo.GetLatest(ctx)
	if err != nil {
		return season.Season{}, false, fmt.Errorf("get latest season: %w", err)
	}
	return ssn, ok, nil
}

func (s *OutcomeService) userNames(ctx context.Context) (map[int64]string, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make(map[int64]string, len(users))
	for _, item := range users {
		out[item.ID] = item.Name()
	}
	return out, nil
}

func displayName(names map[int64]string, userID int64) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("User %d", userID)
}

func pickCurrentFrom(weeks []week.Week, now time.Time) (week.Week, bool) {
	var upcoming *week.Week
	var latest *week.Week
	for idx := range weeks {
		wk := &weeks[idx]
		if !wk.FirstKickoffAt.Before(now) {
			if upcoming == nil || wk.FirstKickoffAt.Before(upcoming.FirstKickoffAt) {
				upcoming = wk
			}
		}
		if latest == nil || wk.FirstKickoffAt.After(latest.FirstKickoffAt) {
			latest = wk
		}
	}
	if upcoming != nil {
		return *upcoming, true
	}
	if latest != nil {
		return *latest, true
	}
	return week.Week{}, false
}
