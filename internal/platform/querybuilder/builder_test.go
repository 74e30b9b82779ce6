package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	from := time.Date(2026, 9, 13, 11, 0, 0, 0, time.UTC)
	to := from.Add(16 * time.Hour)

	query, args, err := Select("*").
		From("games").
		Where(
			NotNull("provider_game_id"),
			NotEq("status", "FINAL"),
			Gte("start_time", from),
			Lte("start_time", to),
		).
		OrderBy("start_time", "id").
		Limit(100).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM games WHERE provider_game_id IS NOT NULL AND status <> $1 AND start_time >= $2 AND start_time <= $3 ORDER BY start_time, id LIMIT 100"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "FINAL" || args[1] != from || args[2] != to {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").
		From("picks").
		Where(In("game_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM picks WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("seasons").
		Columns("year", "is_active").
		Values(2026, true).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO seasons (year, is_active) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 2026 || args[1] != true {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("games").
		Set("status", "FINAL").
		Set("home_score", 27).
		Set("away_score", 20).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(41))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE games SET status = $1, home_score = $2, away_score = $3, updated_at = NOW() WHERE id = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "FINAL" || args[1] != 27 || args[2] != 20 || args[3] != int64(41) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	model := struct {
		Year     int    `db:"year"`
		IsActive bool   `db:"is_active"`
		Ignored  string `db:"-"`
		private  int    //nolint:unused
	}{Year: 2026, IsActive: true}

	query, args, err := InsertModel("seasons", model, "ON CONFLICT (year) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO seasons (year, is_active) VALUES ($1, $2) ON CONFLICT (year) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
