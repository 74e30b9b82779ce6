package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/lunchpool/pickem/internal/domain/team"
)

type teamTableModel struct {
	ID        int64          `db:"id"`
	Abbr      string         `db:"abbr"`
	Name      string         `db:"name"`
	Location  string         `db:"location"`
	Slug      string         `db:"slug"`
	AltAbbrs  pq.StringArray `db:"alt_abbrs"`
	LogoPath  string         `db:"logo_path"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:       m.ID,
		Abbr:     m.Abbr,
		Name:     m.Name,
		Location: m.Location,
		Slug:     m.Slug,
		AltAbbrs: stringArrayToSlice(m.AltAbbrs),
		LogoPath: m.LogoPath,
	}
}

type teamInsertModel struct {
	Abbr     string         `db:"abbr"`
	Name     string         `db:"name"`
	Location string         `db:"location"`
	Slug     string         `db:"slug"`
	AltAbbrs pq.StringArray `db:"alt_abbrs"`
	LogoPath string         `db:"logo_path"`
}
