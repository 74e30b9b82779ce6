package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lunchpool/pickem/internal/domain/pick"
	qb "github.com/lunchpool/pickem/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByUserAndGame(ctx context.Context, userID, gameID int64) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("game_id", gameID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build select pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("select pick: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PickRepository) ListByGameIDs(ctx context.Context, gameIDs []int64) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return []pick.Pick{}, nil
	}
	return r.listWhere(ctx, qb.In("game_id", int64sToAny(gameIDs)))
}

func (r *PickRepository) ListByUserAndGameIDs(ctx context.Context, userID int64, gameIDs []int64) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return []pick.Pick{}, nil
	}
	return r.listWhere(ctx,
		qb.Eq("user_id", userID),
		qb.In("game_id", int64sToAny(gameIDs)),
	)
}

func (r *PickRepository) listWhere(ctx context.Context, conditions ...qb.Condition) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	query, args, err := qb.InsertModel("picks", pickInsertModel{
		UserID:       item.UserID,
		GameID:       item.GameID,
		ChosenTeamID: item.ChosenTeamID,
	}, `ON CONFLICT (user_id, game_id)
DO UPDATE SET
    chosen_team_id = EXCLUDED.chosen_team_id,
    updated_at = now()`)
	if err != nil {
		return fmt.Errorf("build upsert pick query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pick user_id=%d game_id=%d: %w", item.UserID, item.GameID, err)
	}

	return nil
}
