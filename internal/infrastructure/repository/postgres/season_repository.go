package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lunchpool/pickem/internal/domain/season"
	qb "github.com/lunchpool/pickem/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (season.Season, bool, error) {
	return r.getOne(ctx, []qb.Condition{qb.Eq("id", id)}, nil)
}

func (r *SeasonRepository) GetByYear(ctx context.Context, year int) (season.Season, bool, error) {
	return r.getOne(ctx, []qb.Condition{qb.Eq("year", year)}, nil)
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	return r.getOne(ctx, []qb.Condition{qb.Eq("is_active", true)}, []string{"year DESC"})
}

func (r *SeasonRepository) GetLatest(ctx context.Context) (season.Season, bool, error) {
	return r.getOne(ctx, nil, []string{"year DESC"})
}

func (r *SeasonRepository) getOne(ctx context.Context, conditions []qb.Condition, orderBy []string) (season.Season, bool, error) {
	builder := qb.Select("*").From("seasons").Limit(1)
	if len(conditions) > 0 {
		builder = builder.Where(conditions...)
	}
	if len(orderBy) > 0 {
		builder = builder.OrderBy(orderBy...)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("select season: %w", err)
	}

	return row.toDomain(), true, nil
}

// Insert stores the season inside a transaction that first clears the active
// flag elsewhere, so at most one season stays active.
func (r *SeasonRepository) Insert(ctx context.Context, item season.Season) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for season insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if item.IsActive {
		query, args, err := qb.Update("seasons").
			Set("is_active", false).
			Where(qb.Eq("is_active", true)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build deactivate seasons query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("deactivate previous seasons: %w", err)
		}
	}

	query, args, err := qb.InsertModel("seasons", seasonInsertModel{
		Year:     item.Year,
		IsActive: item.IsActive,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert season query: %w", err)
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert season year=%d: %w", item.Year, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit season insert: %w", err)
	}

	return id, nil
}
