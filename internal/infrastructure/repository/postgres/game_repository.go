package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lunchpool/pickem/internal/domain/game"
	qb "github.com/lunchpool/pickem/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (game.Game, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *GameRepository) GetByProviderGameID(ctx context.Context, providerGameID string) (game.Game, bool, error) {
	if providerGameID == "" {
		return game.Game{}, false, nil
	}
	return r.getOne(ctx, qb.Eq("provider_game_id", providerGameID))
}

func (r *GameRepository) getOne(ctx context.Context, condition qb.Condition) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, weekID int64) ([]game.Game, error) {
	return r.listWhere(ctx, qb.Eq("week_id", weekID))
}

func (r *GameRepository) ListByWeekIDs(ctx context.Context, weekIDs []int64) ([]game.Game, error) {
	if len(weekIDs) == 0 {
		return []game.Game{}, nil
	}
	return r.listWhere(ctx, qb.In("week_id", int64sToAny(weekIDs)))
}

func (r *GameRepository) ListPollable(ctx context.Context, windowStart, windowEnd time.Time) ([]game.Game, error) {
	return r.listWhere(ctx,
		qb.NotEq("provider_game_id", ""),
		qb.NotEq("status", string(game.StatusFinal)),
		qb.Gte("start_time", windowStart),
		qb.Lte("start_time", windowEnd),
	)
}

func (r *GameRepository) listWhere(ctx context.Context, conditions ...qb.Condition) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(conditions...).
		OrderBy("start_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *GameRepository) Insert(ctx context.Context, item game.Game) (int64, error) {
	status := item.Status
	if status == "" {
		status = game.StatusScheduled
	}

	query, args, err := qb.InsertModel("games", gameInsertModel{
		WeekID:         item.WeekID,
		HomeTeamID:     item.HomeTeamID,
		AwayTeamID:     item.AwayTeamID,
		StartTime:      item.StartTime,
		Status:         string(status),
		HomeScore:      item.HomeScore,
		AwayScore:      item.AwayScore,
		ProviderGameID: item.ProviderGameID,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert game query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert game week_id=%d: %w", item.WeekID, err)
	}

	return id, nil
}

func (r *GameRepository) UpdateSchedule(ctx context.Context, item game.Game) error {
	query, args, err := qb.Update("games").
		Set("start_time", item.StartTime).
		Set("home_team_id", item.HomeTeamID).
		Set("away_team_id", item.AwayTeamID).
		Set("provider_game_id", item.ProviderGameID).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game schedule query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game schedule id=%d: %w", item.ID, err)
	}

	return nil
}

func (r *GameRepository) UpdateLiveState(ctx context.Context, id int64, status game.Status, homeScore, awayScore int) error {
	query, args, err := qb.Update("games").
		Set("status", string(status)).
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game live state query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game live state id=%d: %w", id, err)
	}

	return nil
}
