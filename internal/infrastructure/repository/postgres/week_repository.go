package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lunchpool/pickem/internal/domain/week"
	qb "github.com/lunchpool/pickem/internal/platform/querybuilder"
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) GetByID(ctx context.Context, id int64) (week.Week, bool, error) {
	return r.getOne(ctx, []qb.Condition{qb.Eq("id", id)}, nil)
}

func (r *WeekRepository) GetByNaturalKey(ctx context.Context, seasonID int64, number int, segment week.Segment) (week.Week, bool, error) {
	return r.getOne(ctx, []qb.Condition{
		qb.Eq("season_id", seasonID),
		qb.Eq("week_number", number),
		qb.Eq("segment", int(segment)),
	}, nil)
}

func (r *WeekRepository) ListBySeason(ctx context.Context, seasonID int64) ([]week.Week, error) {
	query, args, err := qb.Select("*").From("weeks").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("segment", "week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weeks by season query: %w", err)
	}

	var rows []weekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weeks by season: %w", err)
	}

	out := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *WeekRepository) FirstUpcoming(ctx context.Context, now time.Time) (week.Week, bool, error) {
	return r.getOne(ctx,
		[]qb.Condition{qb.Gte("first_kickoff_at", now)},
		[]string{"first_kickoff_at", "id"},
	)
}

func (r *WeekRepository) Latest(ctx context.Context) (week.Week, bool, error) {
	return r.getOne(ctx, nil, []string{"first_kickoff_at DESC", "id DESC"})
}

func (r *WeekRepository) getOne(ctx context.Context, conditions []qb.Condition, orderBy []string) (week.Week, bool, error) {
	builder := qb.Select("*").From("weeks").Limit(1)
	if len(conditions) > 0 {
		builder = builder.Where(conditions...)
	}
	if len(orderBy) > 0 {
		builder = builder.OrderBy(orderBy...)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return week.Week{}, false, fmt.Errorf("build select week query: %w", err)
	}

	var row weekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("select week: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *WeekRepository) Insert(ctx context.Context, item week.Week) (int64, error) {
	query, args, err := qb.InsertModel("weeks", weekInsertModel{
		SeasonID:       item.SeasonID,
		Number:         item.Number,
		Segment:        int(item.Segment),
		FirstKickoffAt: item.FirstKickoffAt,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert week query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert week number=%d season_id=%d: %w", item.Number, item.SeasonID, err)
	}

	return id, nil
}

func (r *WeekRepository) UpdateFirstKickoff(ctx context.Context, id int64, firstKickoffAt time.Time) error {
	query, args, err := qb.Update("weeks").
		Set("first_kickoff_at", firstKickoffAt).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update week kickoff query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update week kickoff id=%d: %w", id, err)
	}

	return nil
}
