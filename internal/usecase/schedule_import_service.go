package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/team"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/platform/logging"
)

// Candidate week ranges per segment. The importer probes every week in the
// range and lets empty provider answers terminate the segment naturally, so
// it never needs the provider to advertise how many weeks a season has.
const (
	preseasonWeekMax  = 4
	regularWeekMax    = 18
	postseasonWeekMax = 5
)

type TeamImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

type SeasonImportSummary struct {
	Preseason   int `json:"pre"`
	Regular     int `json:"reg"`
	Postseason  int `json:"post"`
	Total       int `json:"total"`
	Weeks       int `json:"weeks"`
	FailedWeeks int `json:"failed_weeks,omitempty"`
}

type ImportFullSeasonInput struct {
	Year              int
	IncludePreseason  bool
	IncludePostseason bool
	MaxWorkers        int
}

// ScheduleImportService pulls teams and schedules from the configured
// provider into local storage. Every operation is idempotent: re-importing
// the same week updates rows only where the provider data actually differs.
type ScheduleImportService struct {
	provider   ScheduleProvider
	teamRepo   team.Repository
	seasonRepo season.Repository
	weekRepo   week.Repository
	gameRepo   game.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewScheduleImportService(
	provider ScheduleProvider,
	teamRepo team.Repository,
	seasonRepo season.Repository,
	weekRepo week.Repository,
	gameRepo game.Repository,
	logger *logging.Logger,
) *ScheduleImportService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScheduleImportService{
		provider:   provider,
		teamRepo:   teamRepo,
		seasonRepo: seasonRepo,
		weekRepo:   weekRepo,
		gameRepo:   gameRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// UpsertTeams syncs the provider roster into the team table. Existing rows
// are touched only when a field actually changed, alternate abbreviations
// only when the provider supplied them, and logos only when the provider sent
// a non-empty path, so locally curated data survives sparse provider answers.
func (s *ScheduleImportService) UpsertTeams(ctx context.Context) (TeamImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleImportService.UpsertTeams")
	defer span.End()

	if s.provider == nil {
		return TeamImportResult{}, fmt.Errorf("%w: schedule provider is not configured", ErrDependencyUnavailable)
	}

	providerTeams, err := s.provider.Teams(ctx)
	if err != nil {
		return TeamImportResult{}, fmt.Errorf("fetch teams from provider %s: %w", s.provider.Name(), err)
	}

	existing, err := s.teamRepo.List(ctx)
	if err != nil {
		return TeamImportResult{}, fmt.Errorf("list teams: %w", err)
	}
	byAbbr := make(map[string]team.Team, len(existing))
	for _, item := range existing {
		byAbbr[strings.ToUpper(item.Abbr)] = item
	}

	var result TeamImportResult
	for _, pt := range providerTeams {
		abbr := strings.ToUpper(strings.TrimSpace(pt.Abbr))
		if abbr == "" {
			continue
		}
		slug := strings.TrimSpace(pt.Slug)
		if slug == "" {
			slug = strings.ToLower(abbr)
		}

		current, ok := byAbbr[abbr]
		if !ok {
			row := team.Team{
				Abbr:     abbr,
				Name:     strings.TrimSpace(pt.Name),
				Location: strings.TrimSpace(pt.Location),
				Slug:     slug,
				AltAbbrs: append([]string(nil), pt.AltAbbrs...),
				LogoPath: strings.TrimSpace(pt.LogoPath),
			}
			if err := row.Validate(); err != nil {
				return result, fmt.Errorf("%w: provider team %s: %v", ErrInvalidInput, abbr, err)
			}
			id, err := s.teamRepo.Insert(ctx, row)
			if err != nil {
				return result, fmt.Errorf("insert team %s: %w", abbr, err)
			}
			row.ID = id
			byAbbr[abbr] = row
			result.Inserted++
			continue
		}

		changed := false
		if name := strings.TrimSpace(pt.Name); name != "" && current.Name != name {
			current.Name = name
			changed = true
		}
		if location := strings.TrimSpace(pt.Location); current.Location != location {
			current.Location = location
			changed = true
		}
		if current.Slug != slug {
			current.Slug = slug
			changed = true
		}
		if pt.AltAbbrs != nil && !equalStringLists(current.AltAbbrs, pt.AltAbbrs) {
			current.AltAbbrs = append([]string(nil), pt.AltAbbrs...)
			changed = true
		}
		if logo := strings.TrimSpace(pt.LogoPath); logo != "" && current.LogoPath != logo {
			current.LogoPath = logo
			changed = true
		}
		if changed {
			if err := s.teamRepo.Update(ctx, current); err != nil {
				return result, fmt.Errorf("update team %s: %w", abbr, err)
			}
			byAbbr[abbr] = current
			result.Updated++
		}
	}

	return result, nil
}

// ImportWeekSchedule upserts one week's games. Unresolvable teams are skipped
// without failing the batch, existing games are matched first by provider id
// and then by the exact home/away/kickoff triple, and the week's first
// kickoff is refreshed to the earliest imported start time.
func (s *ScheduleImportService) ImportWeekSchedule(ctx context.Context, year int, weekNumber int, segment week.Segment) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleImportService.ImportWeekSchedule")
	defer span.End()

	if s.provider == nil {
		return 0, fmt.Errorf("%w: schedule provider is not configured", ErrDependencyUnavailable)
	}
	if weekNumber <= 0 {
		return 0, fmt.Errorf("%w: week number must be greater than zero", ErrInvalidInput)
	}
	if !segment.Valid() {
		return 0, fmt.Errorf("%w: unknown season segment %d", ErrInvalidInput, int(segment))
	}
	if err := (season.Season{Year: year}).Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	providerGames, err := s.provider.WeekSchedule(ctx, year, weekNumber, segment)
	if err != nil {
		return 0, fmt.Errorf("fetch week schedule from provider %s year=%d week=%d segment=%s: %w",
			s.provider.Name(), year, weekNumber, segment, err)
	}
	if len(providerGames) == 0 {
		return 0, nil
	}

	ssn, err := s.ensureSeason(ctx, year)
	if err != nil {
		return 0, err
	}
	wk, err := s.ensureWeek(ctx, ssn.ID, weekNumber, segment)
	if err != nil {
		return 0, err
	}

	lookup, err := s.teamLookup(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := s.gameRepo.ListByWeek(ctx, wk.ID)
	if err != nil {
		return 0, fmt.Errorf("list games for week id=%d: %w", wk.ID, err)
	}
	byProviderID := make(map[string]game.Game, len(existing))
	bySchedule := make(map[scheduleKey]game.Game, len(existing))
	for _, item := range existing {
		if item.ProviderGameID != "" {
			byProviderID[item.ProviderGameID] = item
		}
		bySchedule[scheduleKeyFor(item.HomeTeamID, item.AwayTeamID, item.StartTime)] = item
	}

	upserted := 0
	var startTimes []time.Time
	for _, pg := range providerGames {
		home, okHome := lookup[strings.ToUpper(strings.TrimSpace(pg.HomeAbbr))]
		away, okAway := lookup[strings.ToUpper(strings.TrimSpace(pg.AwayAbbr))]
		if !okHome || !okAway {
			s.logger.WarnContext(ctx, "skip game with unresolved team",
				"home_abbr", pg.HomeAbbr,
				"away_abbr", pg.AwayAbbr,
				"provider_game_id", pg.ProviderGameID,
				"year", year,
				"week", weekNumber,
			)
			continue
		}
		startTime := pg.StartTime.UTC()

		current, found := game.Game{}, false
		if pg.ProviderGameID != "" {
			current, found = byProviderID[pg.ProviderGameID]
		}
		if !found {
			current, found = bySchedule[scheduleKeyFor(home.ID, away.ID, startTime)]
		}

		if !found {
			row := game.Game{
				WeekID:         wk.ID,
				HomeTeamID:     home.ID,
				AwayTeamID:     away.ID,
				StartTime:      startTime,
				Status:         game.StatusScheduled,
				ProviderGameID: pg.ProviderGameID,
			}
			id, err := s.gameRepo.Insert(ctx, row)
			if err != nil {
				return upserted, fmt.Errorf("insert game %s at %s: %w", pg.ProviderGameID, startTime, err)
			}
			row.ID = id
			if row.ProviderGameID != "" {
				byProviderID[row.ProviderGameID] = row
			}
			bySchedule[scheduleKeyFor(row.HomeTeamID, row.AwayTeamID, row.StartTime)] = row
			upserted++
		} else {
			changed := false
			if !current.StartTime.Equal(startTime) {
				current.StartTime = startTime
				changed = true
			}
			if current.HomeTeamID != home.ID || current.AwayTeamID != away.ID {
				current.HomeTeamID = home.ID
				current.AwayTeamID = away.ID
				changed = true
			}
			if pg.ProviderGameID != "" && current.ProviderGameID != pg.ProviderGameID {
				current.ProviderGameID = pg.ProviderGameID
				changed = true
			}
			if changed {
				if err := s.gameRepo.UpdateSchedule(ctx, current); err != nil {
					return upserted, fmt.Errorf("update game id=%d: %w", current.ID, err)
				}
				if current.ProviderGameID != "" {
					byProviderID[current.ProviderGameID] = current
				}
				bySchedule[scheduleKeyFor(current.HomeTeamID, current.AwayTeamID, current.StartTime)] = current
				upserted++
			}
		}

		startTimes = append(startTimes, startTime)
	}

	if len(startTimes) > 0 {
		earliest := startTimes[0]
		for _, item := range startTimes[1:] {
			if item.Before(earliest) {
				earliest = item
			}
		}
		if err := s.weekRepo.UpdateFirstKickoff(ctx, wk.ID, earliest); err != nil {
			return upserted, fmt.Errorf("update first kickoff for week id=%d: %w", wk.ID, err)
		}
	}

	return upserted, nil
}

// ImportFullSeason walks every candidate week of the season through a bounded
// worker pool. A week counts toward the summary only when it yielded at least
// one upsert; weeks that error are logged and counted as failed so a broken
// provider surfaces in the summary instead of silently importing nothing.
func (s *ScheduleImportService) ImportFullSeason(ctx context.Context, input ImportFullSeasonInput) (SeasonImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleImportService.ImportFullSeason")
	defer span.End()

	if s.provider == nil {
		return SeasonImportSummary{}, fmt.Errorf("%w: schedule provider is not configured", ErrDependencyUnavailable)
	}
	if err := (season.Season{Year: input.Year}).Validate(); err != nil {
		return SeasonImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Creating the season up front keeps the week imports free of a
	// get-or-create race once they run in parallel.
	if _, err := s.ensureSeason(ctx, input.Year); err != nil {
		return SeasonImportSummary{}, err
	}

	type weekTask struct {
		segment    week.Segment
		weekNumber int
	}
	var tasks []weekTask
	if input.IncludePreseason {
		for wk := 1; wk <= preseasonWeekMax; wk++ {
			tasks = append(tasks, weekTask{segment: week.SegmentPreseason, weekNumber: wk})
		}
	}
	for wk := 1; wk <= regularWeekMax; wk++ {
		tasks = append(tasks, weekTask{segment: week.SegmentRegular, weekNumber: wk})
	}
	if input.IncludePostseason {
		for wk := 1; wk <= postseasonWeekMax; wk++ {
			tasks = append(tasks, weekTask{segment: week.SegmentPostseason, weekNumber: wk})
		}
	}

	workerCount := normalizeImportWorkerCount(input.MaxWorkers, len(tasks))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SeasonImportSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var preCount, regCount, postCount, weekCount, failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			count, err := s.ImportWeekSchedule(ctx, input.Year, task.weekNumber, task.segment)
			if err != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "season import week failed",
					"year", input.Year,
					"week", task.weekNumber,
					"segment", task.segment.String(),
					"error", err,
				)
				return
			}
			if count == 0 {
				return
			}

			switch task.segment {
			case week.SegmentPreseason:
				preCount.Add(int32(count))
			case week.SegmentPostseason:
				postCount.Add(int32(count))
			default:
				regCount.Add(int32(count))
			}
			weekCount.Add(1)
		}); err != nil {
			workers.Done()
			return SeasonImportSummary{}, fmt.Errorf("submit week import to worker pool: %w", err)
		}
	}
	workers.Wait()

	summary := SeasonImportSummary{
		Preseason:   int(preCount.Load()),
		Regular:     int(regCount.Load()),
		Postseason:  int(postCount.Load()),
		Weeks:       int(weekCount.Load()),
		FailedWeeks: int(failedCount.Load()),
	}
	summary.Total = summary.Preseason + summary.Regular + summary.Postseason
	return summary, nil
}

func (s *ScheduleImportService) ensureSeason(ctx context.Context, year int) (season.Season, error) {
	existing, ok, err := s.seasonRepo.GetByYear(ctx, year)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season year=%d: %w", year, err)
	}
	if ok {
		return existing, nil
	}

	row := season.Season{Year: year, IsActive: true}
	id, err := s.seasonRepo.Insert(ctx, row)
	if err != nil {
		return season.Season{}, fmt.Errorf("insert season year=%d: %w", year, err)
	}
	row.ID = id
	return row, nil
}

func (s *ScheduleImportService) ensureWeek(ctx context.Context, seasonID int64, weekNumber int, segment week.Segment) (week.Week, error) {
	existing, ok, err := s.weekRepo.GetByNaturalKey(ctx, seasonID, weekNumber, segment)
	if err != nil {
		return week.Week{}, fmt.Errorf("get week season_id=%d number=%d segment=%s: %w", seasonID, weekNumber, segment, err)
	}
	if ok {
		return existing, nil
	}

	// Placeholder kickoff; the import replaces it with the real minimum
	// start time once games resolve.
	row := week.Week{
		SeasonID:       seasonID,
		Number:         weekNumber,
		Segment:        segment,
		FirstKickoffAt: s.now().UTC(),
	}
	id, err := s.weekRepo.Insert(ctx, row)
	if err != nil {
		return week.Week{}, fmt.Errorf("insert week season_id=%d number=%d segment=%s: %w", seasonID, weekNumber, segment, err)
	}
	row.ID = id
	return row, nil
}

// teamLookup maps the canonical abbreviation and every alternate, uppercased,
// to the owning team so provider naming drift still resolves.
func (s *ScheduleImportService) teamLookup(ctx context.Context) (map[string]team.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams for schedule import: %w", err)
	}

	out := make(map[string]team.Team, len(teams)*2)
	for _, item := range teams {
		if item.Abbr != "" {
			out[strings.ToUpper(item.Abbr)] = item
		}
		for _, alt := range item.AltAbbrs {
			alt = strings.ToUpper(strings.TrimSpace(alt))
			if alt != "" {
				out[alt] = item
			}
		}
	}
	return out, nil
}

type scheduleKey struct {
	homeTeamID int64
	awayTeamID int64
	startUnix  int64
}

func scheduleKeyFor(homeTeamID, awayTeamID int64, startTime time.Time) scheduleKey {
	return scheduleKey{
		homeTeamID: homeTeamID,
		awayTeamID: awayTeamID,
		startUnix:  startTime.UTC().Unix(),
	}
}

func equalStringLists(left, right []string) bool {
	if len(left) != len(right) {
		return false
	}
	for idx := range left {
		if left[idx] != right[idx] {
			return false
		}
	}
	return true
}

func normalizeImportWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 4
	}
	if value > 4 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
