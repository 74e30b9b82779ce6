package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/platform/logging"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobOrchestratorConfig struct {
	ScheduleInterval time.Duration
	LiveInterval     time.Duration
	PreKickoffLead   time.Duration
	IdleInterval     time.Duration
}

type JobSyncInput struct {
	Force bool
}

type JobSyncResult struct {
	Mode             string   `json:"mode"`
	LiveGameCount    int      `json:"live_game_count"`
	ChangedGames     int      `json:"changed_games"`
	ImportedGames    int      `json:"imported_games"`
	QueuedCount      int      `json:"queued_count"`
	QueuedOperations []string `json:"queued_operations"`
}

type liveGameRefresher interface {
	RefreshLiveGames(ctx context.Context) (int, error)
}

type currentWeekResolver interface {
	CurrentWeek(ctx context.Context) (week.Week, error)
}

// JobOrchestratorService runs the recurring sync work and decides when the
// next round should happen. With a real queue each run re-enqueues its
// successor at a cadence derived from the current week's games: tight while
// games are live, lined up just before the next kickoff, sparse otherwise.
// With the noop queue the enqueues vanish and an in-process ticker drives the
// same entry points instead.
type JobOrchestratorService struct {
	weekResolver currentWeekResolver
	seasonRepo   season.Repository
	gameRepo     game.Repository
	importer     weekScheduleImporter
	refresher    liveGameRefresher
	queue        JobQueue
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	weekResolver currentWeekResolver,
	seasonRepo season.Repository,
	gameRepo game.Repository,
	importer weekScheduleImporter,
	refresher liveGameRefresher,
	queue JobQueue,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ScheduleInterval <= 0 {
		cfg.ScheduleInterval = 15 * time.Minute
	}
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = time.Minute
	}
	if cfg.PreKickoffLead <= 0 {
		cfg.PreKickoffLead = 15 * time.Minute
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 6 * time.Hour
	}

	return &JobOrchestratorService{
		weekResolver: weekResolver,
		seasonRepo:   seasonRepo,
		gameRepo:     gameRepo,
		importer:     importer,
		refresher:    refresher,
		queue:        queue,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Bootstrap seeds the queue with an immediate run of both job kinds. Called
// once at startup when a real queue is configured.
func (s *JobOrchestratorService) Bootstrap(ctx context.Context) (JobSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.Bootstrap")
	defer span.End()

	now := s.now().UTC()
	result := JobSyncResult{Mode: "bootstrap"}

	if err := s.enqueue(ctx, "sync-schedule", "pool", 0, now, s.cfg.ScheduleInterval); err != nil {
		return JobSyncResult{}, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, "sync-schedule")

	if err := s.enqueue(ctx, "sync-live", "pool", 0, now, s.cfg.LiveInterval); err != nil {
		return JobSyncResult{}, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, "sync-live")

	return result, nil
}

// RunLiveSync reconciles live provider state into game rows, then lines up
// the next rounds.
func (s *JobOrchestratorService) RunLiveSync(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunLiveSync")
	defer span.End()

	result := JobSyncResult{Mode: "live"}

	if s.refresher != nil {
		changed, err := s.refresher.RefreshLiveGames(ctx)
		if err != nil {
			return JobSyncResult{}, fmt.Errorf("refresh live games: %w", err)
		}
		result.ChangedGames = changed
	}

	if err := s.planNextRounds(ctx, input, &result); err != nil {
		return JobSyncResult{}, err
	}
	return result, nil
}

// RunScheduleSync re-imports the current week's schedule so flexed kickoffs
// and late provider id assignments land locally, then lines up the next
// rounds.
func (s *JobOrchestratorService) RunScheduleSync(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunScheduleSync")
	defer span.End()

	result := JobSyncResult{Mode: "schedule"}

	wk, err := s.currentWeek(ctx)
	if err != nil {
		return JobSyncResult{}, err
	}
	if wk != nil && s.importer != nil {
		ssn, ok, err := s.seasonRepo.GetByID(ctx, wk.SeasonID)
		if err != nil {
			return JobSyncResult{}, fmt.Errorf("get season id=%d: %w", wk.SeasonID, err)
		}
		if ok {
			imported, err := s.importer.ImportWeekSchedule(ctx, ssn.Year, wk.Number, wk.Segment)
			if err != nil {
				return JobSyncResult{}, fmt.Errorf("import schedule year=%d week=%d segment=%s: %w", ssn.Year, wk.Number, wk.Segment, err)
			}
			result.ImportedGames = imported
		}
	}

	if err := s.planNextRounds(ctx, input, &result); err != nil {
		return JobSyncResult{}, err
	}
	return result, nil
}

func (s *JobOrchestratorService) planNextRounds(ctx context.Context, input JobSyncInput, result *JobSyncResult) error {
	now := s.now().UTC()

	wk, err := s.currentWeek(ctx)
	if err != nil {
		return err
	}

	scope := "pool"
	var games []game.Game
	if wk != nil {
		scope = weekScope(*wk)
		games, err = s.gameRepo.ListByWeek(ctx, wk.ID)
		if err != nil {
			return fmt.Errorf("list games for week id=%d: %w", wk.ID, err)
		}
	}

	hasLive, nearestUpcoming := analyzeGames(games, now)
	for _, item := range games {
		if item.Status == game.StatusInProgress {
			result.LiveGameCount++
		}
	}

	if hasLive {
		if err := s.enqueue(ctx, "sync-live", scope, s.cfg.LiveInterval, now, s.cfg.LiveInterval); err != nil {
			return err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, "sync-live")
	} else if nearestUpcoming != nil {
		liveAt := nearestUpcoming.Add(-s.cfg.PreKickoffLead)
		delay := liveAt.Sub(now)
		if input.Force {
			delay = 0
		} else if delay <= 0 {
			delay = s.cfg.LiveInterval
		}
		if err := s.enqueue(ctx, "sync-live", scope, delay, now, s.cfg.LiveInterval); err != nil {
			return err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, "sync-live")
	}

	scheduleDelay := s.nextScheduleDelay(now, hasLive, nearestUpcoming)
	if err := s.enqueue(ctx, "sync-schedule", scope, scheduleDelay, now, s.cfg.ScheduleInterval); err != nil {
		return err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, "sync-schedule")

	return nil
}

func (s *JobOrchestratorService) currentWeek(ctx context.Context) (*week.Week, error) {
	if s.weekResolver == nil {
		return nil, nil
	}
	wk, err := s.weekResolver.CurrentWeek(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve current week: %w", err)
	}
	return &wk, nil
}

func (s *JobOrchestratorService) enqueue(ctx context.Context, jobName, scope string, delay time.Duration, now time.Time, bucket time.Duration) error {
	dedupID := dedupKey(jobName, scope, now.Add(delay), bucket)
	payload := map[string]any{
		"dispatch_id": dedupID,
	}
	path := "/v1/internal/jobs/" + jobName
	if err := s.queue.Enqueue(ctx, path, payload, delay, dedupID); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobName, err)
	}
	s.logger.DebugContext(ctx, "job enqueued",
		"job", jobName,
		"dispatch_id", dedupID,
		"delay", delay.String(),
	)
	return nil
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scope = sanitizeDedupSegment(scope)
	return prefix + "-" + scope + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func weekScope(wk week.Week) string {
	return fmt.Sprintf("s%d-%s-w%d", wk.SeasonID, wk.Segment, wk.Number)
}

func analyzeGames(items []game.Game, now time.Time) (bool, *time.Time) {
	var nearestUpcoming *time.Time
	hasLive := false
	for _, item := range items {
		if item.Status == game.StatusInProgress {
			hasLive = true
		}
		if item.Status == game.StatusFinal {
			continue
		}
		if item.StartTime.IsZero() || item.StartTime.Before(now) {
			continue
		}
		if nearestUpcoming == nil || item.StartTime.Before(*nearestUpcoming) {
			next := item.StartTime
			nearestUpcoming = &next
		}
	}

	return hasLive, nearestUpcoming
}

func (s *JobOrchestratorService) nextScheduleDelay(now time.Time, hasLive bool, nearestUpcoming *time.Time) time.Duration {
	minDelay := time.Minute
	if hasLive {
		return maxDuration(s.cfg.LiveInterval, minDelay)
	}

	if nearestUpcoming != nil {
		liveAt := nearestUpcoming.Add(-s.cfg.PreKickoffLead)
		delay := liveAt.Sub(now)
		if delay <= 0 {
			return maxDuration(s.cfg.LiveInterval, minDelay)
		}
		return maxDuration(delay, minDelay)
	}

	// Nothing upcoming nearby, poll far less often.
	return maxDuration(s.cfg.ScheduleInterval, s.cfg.IdleInterval)
}

func maxDuration(left, right time.Duration) time.Duration {
	if left > right {
		return left
	}
	return right
}
