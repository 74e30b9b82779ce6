package pick

import "context"

type Repository interface {
	GetByUserAndGame(ctx context.Context, userID, gameID int64) (Pick, bool, error)
	ListByGameIDs(ctx context.Context, gameIDs []int64) ([]Pick, error)
	ListByUserAndGameIDs(ctx context.Context, userID int64, gameIDs []int64) ([]Pick, error)
	Upsert(ctx context.Context, item Pick) error
}
