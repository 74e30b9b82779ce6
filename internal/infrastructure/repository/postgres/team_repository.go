package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lunchpool/pickem/internal/domain/team"
	qb "github.com/lunchpool/pickem/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *TeamRepository) GetByAbbr(ctx context.Context, abbr string) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("abbr", abbr))
}

func (r *TeamRepository) getOne(ctx context.Context, condition qb.Condition) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TeamRepository) Insert(ctx context.Context, item team.Team) (int64, error) {
	model := teamInsertModel{
		Abbr:     item.Abbr,
		Name:     item.Name,
		Location: item.Location,
		Slug:     item.Slug,
		AltAbbrs: sliceToStringArray(item.AltAbbrs),
		LogoPath: item.LogoPath,
	}

	query, args, err := qb.InsertModel("teams", model, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert team abbr=%s: %w", item.Abbr, err)
	}

	return id, nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	query, args, err := qb.Update("teams").
		Set("abbr", item.Abbr).
		Set("name", item.Name).
		Set("location", item.Location).
		Set("slug", item.Slug).
		Set("alt_abbrs", sliceToStringArray(item.AltAbbrs)).
		Set("logo_path", item.LogoPath).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team id=%d: %w", item.ID, err)
	}

	return nil
}
