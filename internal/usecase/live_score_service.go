package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/platform/cache"
	"github.com/lunchpool/pickem/internal/platform/logging"
)

type LiveScoreConfig struct {
	// CacheTTL bounds how long a fetched summary is served without a new
	// provider call. NegativeTTL does the same for ids the provider answered
	// "not found" for, which is much longer since those ids rarely recover.
	CacheTTL      time.Duration
	NegativeTTL   time.Duration
	LookBack      time.Duration
	LookAhead     time.Duration
	MaxConcurrent int
}

func DefaultLiveScoreConfig() LiveScoreConfig {
	return LiveScoreConfig{
		CacheTTL:      15 * time.Second,
		NegativeTTL:   10 * time.Minute,
		LookBack:      6 * time.Hour,
		LookAhead:     10 * time.Hour,
		MaxConcurrent: 4,
	}
}

type BackfillResult struct {
	Total    int `json:"total"`
	WithID   int `json:"with_id"`
	Updated  int `json:"updated"`
	Final    int `json:"final"`
	Imported int `json:"imported"`
}

type weekScheduleImporter interface {
	ImportWeekSchedule(ctx context.Context, year int, weekNumber int, segment week.Segment) (int, error)
}

// LiveScoreService fronts the live provider with a positive and a negative
// cache and reconciles fetched state into game rows. It is shared by the
// periodic poll job and the admin-triggered refresh and backfill actions.
type LiveScoreService struct {
	provider   LiveProvider
	gameRepo   game.Repository
	seasonRepo season.Repository
	weekRepo   week.Repository
	importer   weekScheduleImporter
	cfg        LiveScoreConfig
	logger     *logging.Logger
	now        func() time.Time

	summaries *cache.Store
	misses    *cache.Store
}

func NewLiveScoreService(
	provider LiveProvider,
	gameRepo game.Repository,
	seasonRepo season.Repository,
	weekRepo week.Repository,
	importer weekScheduleImporter,
	cfg LiveScoreConfig,
	logger *logging.Logger,
) *LiveScoreService {
	defaults := DefaultLiveScoreConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = defaults.NegativeTTL
	}
	if cfg.LookBack <= 0 {
		cfg.LookBack = defaults.LookBack
	}
	if cfg.LookAhead <= 0 {
		cfg.LookAhead = defaults.LookAhead
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaults.MaxConcurrent
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &LiveScoreService{
		provider:   provider,
		gameRepo:   gameRepo,
		seasonRepo: seasonRepo,
		weekRepo:   weekRepo,
		importer:   importer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		summaries:  cache.NewStore(cfg.CacheTTL),
		misses:     cache.NewStore(cfg.NegativeTTL),
	}
}

// FetchOne looks the event up at the provider. Failures never propagate to
// the caller: transport and parse errors return false, and "not found/gone"
// answers additionally negative-cache the id so bulk polls stop retrying it.
func (s *LiveScoreService) FetchOne(ctx context.Context, eventID string) (LiveSnapshot, bool) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" || s.provider == nil {
		return LiveSnapshot{}, false
	}

	snapshot, err := s.provider.LiveDetail(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrLiveEventNotFound) {
			s.misses.Set(ctx, eventID, struct{}{})
			s.logger.DebugContext(ctx, "live event negative-cached", "event_id", eventID)
			return LiveSnapshot{}, false
		}
		s.logger.DebugContext(ctx, "live event fetch failed", "event_id", eventID, "error", err.Error())
		return LiveSnapshot{}, false
	}
	return snapshot, true
}

// FetchMany resolves summaries for the given event ids, serving fresh cache
// entries and skipping negative-cached ids. force clears both caches for the
// requested ids first so admin reconciliation never trusts a stale failure.
// Remaining ids are fetched through a bounded pool with per-item isolation.
func (s *LiveScoreService) FetchMany(ctx context.Context, eventIDs []string, force bool) map[string]LiveSnapshot {
	out := make(map[string]LiveSnapshot)

	seen := make(map[string]struct{}, len(eventIDs))
	ids := make([]string, 0, len(eventIDs))
	for _, id := range eventIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return out
	}

	if force {
		for _, id := range ids {
			s.summaries.Delete(ctx, id)
			s.misses.Delete(ctx, id)
		}
	}

	var toFetch []string
	for _, id := range ids {
		if !force {
			if _, missed := s.misses.Get(ctx, id); missed {
				continue
			}
			if value, found := s.summaries.Get(ctx, id); found {
				if snapshot, ok := value.(LiveSnapshot); ok {
					out[id] = snapshot
					continue
				}
			}
		}
		toFetch = append(toFetch, id)
	}
	if len(toFetch) == 0 {
		return out
	}

	var mu sync.Mutex
	workers := pool.New().WithMaxGoroutines(s.cfg.MaxConcurrent)
	for _, id := range toFetch {
		id := id
		workers.Go(func() {
			snapshot, ok := s.FetchOne(ctx, id)
			if !ok {
				return
			}
			s.summaries.Set(ctx, id, snapshot)
			mu.Lock()
			out[id] = snapshot
			mu.Unlock()
		})
	}
	workers.Wait()

	return out
}

// Invalidate drops cache entries for the given event ids, or everything when
// called without arguments.
func (s *LiveScoreService) Invalidate(ctx context.Context, eventIDs ...string) {
	if len(eventIDs) == 0 {
		s.summaries.Purge(ctx)
		s.misses.Purge(ctx)
		return
	}
	for _, id := range eventIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		s.summaries.Delete(ctx, id)
		s.misses.Delete(ctx, id)
	}
}

// RefreshLiveGames reconciles provider state into every non-final game with a
// provider id whose kickoff falls inside the polling window around now. It
// returns the number of rows actually changed.
func (s *LiveScoreService) RefreshLiveGames(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.RefreshLiveGames")
	defer span.End()

	now := s.now().UTC()
	games, err := s.gameRepo.ListPollable(ctx, now.Add(-s.cfg.LookBack), now.Add(s.cfg.LookAhead))
	if err != nil {
		return 0, fmt.Errorf("list pollable games: %w", err)
	}

	ids := make([]string, 0, len(games))
	for _, item := range games {
		if item.ProviderGameID != "" {
			ids = append(ids, item.ProviderGameID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	live := s.FetchMany(ctx, ids, false)

	changed := 0
	for _, item := range games {
		snapshot, ok := live[item.ProviderGameID]
		if !ok {
			continue
		}
		next, dirty := applyLiveState(item, snapshot.State, snapshot.HomeScore, snapshot.AwayScore, true)
		if !dirty {
			continue
		}
		if err := s.gameRepo.UpdateLiveState(ctx, next.ID, next.Status, next.HomeScore, next.AwayScore); err != nil {
			return changed, fmt.Errorf("update live state game id=%d: %w", next.ID, err)
		}
		changed++
	}
	return changed, nil
}

// BackfillWeek is the admin recovery path for a week whose rows drifted from
// reality. It re-imports the schedule to attach missing provider ids, force
// fetches every summary past the caches, and falls back to the scoreboard
// listing for ids whose summary endpoint lagged or returned nothing.
func (s *LiveScoreService) BackfillWeek(ctx context.Context, year int, weekNumber int, segment week.Segment) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.BackfillWeek")
	defer span.End()

	if weekNumber <= 0 {
		return BackfillResult{}, fmt.Errorf("%w: week number must be greater than zero", ErrInvalidInput)
	}
	if !segment.Valid() {
		return BackfillResult{}, fmt.Errorf("%w: unknown season segment %d", ErrInvalidInput, int(segment))
	}
	if err := (season.Season{Year: year}).Validate(); err != nil {
		return BackfillResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ssn, ok, err := s.seasonRepo.GetByYear(ctx, year)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("get season year=%d: %w", year, err)
	}
	if !ok {
		return BackfillResult{}, fmt.Errorf("%w: season %d", ErrNotFound, year)
	}
	wk, ok, err := s.weekRepo.GetByNaturalKey(ctx, ssn.ID, weekNumber, segment)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("get week year=%d number=%d segment=%s: %w", year, weekNumber, segment, err)
	}
	if !ok {
		return BackfillResult{}, fmt.Errorf("%w: week %d of %s %d", ErrNotFound, weekNumber, segment, year)
	}

	var result BackfillResult
	if s.importer != nil {
		imported, err := s.importer.ImportWeekSchedule(ctx, year, weekNumber, segment)
		if err != nil {
			s.logger.WarnContext(ctx, "backfill schedule re-import failed, continuing with stored games",
				"year", year, "week", weekNumber, "segment", segment.String(), "error", err.Error())
		} else {
			result.Imported = imported
		}
	}

	games, err := s.gameRepo.ListByWeek(ctx, wk.ID)
	if err != nil {
		return result, fmt.Errorf("list games for week id=%d: %w", wk.ID, err)
	}
	result.Total = len(games)

	ids := make([]string, 0, len(games))
	for _, item := range games {
		if item.ProviderGameID != "" {
			ids = append(ids, item.ProviderGameID)
		}
	}
	result.WithID = len(ids)
	if len(ids) == 0 {
		return result, nil
	}

	live := s.FetchMany(ctx, ids, true)

	// Ids whose summary was missing or still not final get a second chance
	// from the scoreboard listing below.
	remaining := make(map[string]struct{})
	for idx := range games {
		id := games[idx].ProviderGameID
		if id == "" {
			continue
		}
		snapshot, ok := live[id]
		if !ok || snapshot.State != "post" {
			remaining[id] = struct{}{}
			continue
		}
		next, dirty := applyLiveState(games[idx], snapshot.State, snapshot.HomeScore, snapshot.AwayScore, true)
		if dirty {
			if err := s.gameRepo.UpdateLiveState(ctx, next.ID, next.Status, next.HomeScore, next.AwayScore); err != nil {
				return result, fmt.Errorf("update live state game id=%d: %w", next.ID, err)
			}
			result.Updated++
		}
		games[idx] = next
		if next.Status == game.StatusFinal {
			result.Final++
		}
	}

	// Non-post summaries still carry usable state; apply them before the
	// scoreboard pass so an in-progress week reads correctly even when the
	// listing fails.
	for idx := range games {
		id := games[idx].ProviderGameID
		if id == "" {
			continue
		}
		if _, pending := remaining[id]; !pending {
			continue
		}
		snapshot, ok := live[id]
		if !ok {
			continue
		}
		next, dirty := applyLiveState(games[idx], snapshot.State, snapshot.HomeScore, snapshot.AwayScore, true)
		if dirty {
			if err := s.gameRepo.UpdateLiveState(ctx, next.ID, next.Status, next.HomeScore, next.AwayScore); err != nil {
				return result, fmt.Errorf("update live state game id=%d: %w", next.ID, err)
			}
			result.Updated++
		}
		games[idx] = next
	}

	if len(remaining) == 0 {
		return result, nil
	}

	events, err := s.provider.WeekScoreboard(ctx, year, weekNumber, segment)
	if err != nil {
		s.logger.WarnContext(ctx, "backfill scoreboard fallback failed",
			"year", year, "week", weekNumber, "segment", segment.String(), "error", err.Error())
		return result, nil
	}
	byEventID := make(map[string]ExternalScoreboardEvent, len(events))
	for _, ev := range events {
		if ev.EventID != "" {
			byEventID[ev.EventID] = ev
		}
	}

	for idx := range games {
		id := games[idx].ProviderGameID
		if id == "" {
			continue
		}
		if _, pending := remaining[id]; !pending {
			continue
		}
		ev, ok := byEventID[id]
		if !ok {
			continue
		}
		next, dirty := applyLiveState(games[idx], ev.State, ev.HomeScore, ev.AwayScore, false)
		if dirty {
			if err := s.gameRepo.UpdateLiveState(ctx, next.ID, next.Status, next.HomeScore, next.AwayScore); err != nil {
				return result, fmt.Errorf("update live state game id=%d: %w", next.ID, err)
			}
			result.Updated++
		}
		games[idx] = next
		if next.Status == game.StatusFinal {
			result.Final++
		}
	}

	return result, nil
}

// applyLiveState maps provider state onto a game row. Scores always replace
// when the provider sent one. mapUnknown controls what an unrecognized state
// does: the summary path treats it as scheduled (status regression is
// deliberate, a postponed game walks back), the scoreboard fallback leaves
// the stored status alone.
func applyLiveState(current game.Game, state string, homeScore, awayScore *int, mapUnknown bool) (game.Game, bool) {
	next := current
	switch strings.ToLower(state) {
	case "in":
		next.Status = game.StatusInProgress
	case "post":
		next.Status = game.StatusFinal
	case "pre":
		next.Status = game.StatusScheduled
	default:
		if mapUnknown {
			next.Status = game.StatusScheduled
		}
	}
	if homeScore != nil {
		next.HomeScore = *homeScore
	}
	if awayScore != nil {
		next.AwayScore = *awayScore
	}

	changed := next.Status != current.Status ||
		next.HomeScore != current.HomeScore ||
		next.AwayScore != current.AwayScore
	return next, changed
}
