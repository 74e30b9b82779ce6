// Package cache decorates repositories with read-through caching for the
// slow-moving entities: teams, seasons and weeks. Games, picks and
// tiebreakers change during play and always hit the source repository.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/team"
	"github.com/lunchpool/pickem/internal/domain/week"
	basecache "github.com/lunchpool/pickem/internal/platform/cache"
)

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	key := "team:id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) GetByAbbr(ctx context.Context, abbr string) (team.Team, bool, error) {
	key := "team:abbr:" + abbr
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByAbbr(ctx, abbr)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) Insert(ctx context.Context, item team.Team) (int64, error) {
	id, err := r.next.Insert(ctx, item)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return id, nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}

type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (season.Season, bool, error) {
	return r.cached(ctx, "season:id:"+strconv.FormatInt(id, 10), func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *SeasonRepository) GetByYear(ctx context.Context, year int) (season.Season, bool, error) {
	return r.cached(ctx, "season:year:"+strconv.Itoa(year), func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetByYear(ctx, year)
	})
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	return r.cached(ctx, "season:active", r.next.GetActive)
}

func (r *SeasonRepository) GetLatest(ctx context.Context) (season.Season, bool, error) {
	return r.cached(ctx, "season:latest", r.next.GetLatest)
}

func (r *SeasonRepository) Insert(ctx context.Context, item season.Season) (int64, error) {
	id, err := r.next.Insert(ctx, item)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, "season:")
	return id, nil
}

func (r *SeasonRepository) cached(ctx context.Context, key string, load func(context.Context) (season.Season, bool, error)) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

type cachedSeason struct {
	value  season.Season
	exists bool
}

type WeekRepository struct {
	next  week.Repository
	cache *basecache.Store
}

func NewWeekRepository(next week.Repository, cache *basecache.Store) *WeekRepository {
	return &WeekRepository{next: next, cache: cache}
}

func (r *WeekRepository) GetByID(ctx context.Context, id int64) (week.Week, bool, error) {
	return r.cached(ctx, "week:id:"+strconv.FormatInt(id, 10), func(ctx context.Context) (week.Week, bool, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *WeekRepository) GetByNaturalKey(ctx context.Context, seasonID int64, number int, segment week.Segment) (week.Week, bool, error) {
	key := "week:key:" + strconv.FormatInt(seasonID, 10) + ":" + strconv.Itoa(number) + ":" + strconv.Itoa(int(segment))
	return r.cached(ctx, key, func(ctx context.Context) (week.Week, bool, error) {
		return r.next.GetByNaturalKey(ctx, seasonID, number, segment)
	})
}

func (r *WeekRepository) ListBySeason(ctx context.Context, seasonID int64) ([]week.Week, error) {
	key := "week:list:" + strconv.FormatInt(seasonID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return append([]week.Week(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]week.Week)
	return append([]week.Week(nil), items...), nil
}

// FirstUpcoming and Latest depend on the clock, so caching them would pin a
// moving answer. They always pass through.
func (r *WeekRepository) FirstUpcoming(ctx context.Context, now time.Time) (week.Week, bool, error) {
	return r.next.FirstUpcoming(ctx, now)
}

func (r *WeekRepository) Latest(ctx context.Context) (week.Week, bool, error) {
	return r.next.Latest(ctx)
}

func (r *WeekRepository) Insert(ctx context.Context, item week.Week) (int64, error) {
	id, err := r.next.Insert(ctx, item)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, "week:")
	return id, nil
}

func (r *WeekRepository) UpdateFirstKickoff(ctx context.Context, id int64, firstKickoffAt time.Time) error {
	if err := r.next.UpdateFirstKickoff(ctx, id, firstKickoffAt); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "week:")
	return nil
}

func (r *WeekRepository) cached(ctx context.Context, key string, load func(context.Context) (week.Week, bool, error)) (week.Week, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cachedWeek{value: item, exists: exists}, nil
	})
	if err != nil {
		return week.Week{}, false, err
	}

	cached, _ := v.(cachedWeek)
	return cached.value, cached.exists, nil
}

type cachedWeek struct {
	value  week.Week
	exists bool
}
