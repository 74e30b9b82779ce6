package postgres

import (
	"time"

	"github.com/lunchpool/pickem/internal/domain/user"
)

type userTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Username    string    `db:"username"`
	DisplayName string    `db:"display_name"`
	IsAdmin     bool      `db:"is_admin"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:          m.ID,
		PublicID:    m.PublicID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		IsAdmin:     m.IsAdmin,
	}
}

type userInsertModel struct {
	PublicID    string `db:"public_id"`
	Username    string `db:"username"`
	DisplayName string `db:"display_name"`
	IsAdmin     bool   `db:"is_admin"`
}
