package querybuilder

import (
	"math"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "status", "created_at").
		From("matches").
		Where(Eq("owner_uid", "uid-1"), Eq("status", "PENDING")).
		OrderBy("created_at DESC", "id DESC").
		Limit(20).
		Offset(40).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, status, created_at FROM matches WHERE owner_uid = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "uid-1" || args[1] != "PENDING" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ContainsFold(t *testing.T) {
	query, args, err := Select("id").
		From("player_profiles").
		Where(ContainsFold("first_name", "jo_n%"), Eq("country", "Spain")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := `SELECT id FROM player_profiles WHERE first_name ILIKE $1 ESCAPE '\' AND country = $2`
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != `%jo\_n\%%` || args[1] != "Spain" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		builder *SelectBuilder
	}{
		{name: "missing table", builder: Select("id")},
		{name: "missing columns", builder: Select().From("clubs")},
		{name: "negative limit", builder: Select("id").From("clubs").Limit(-1)},
		{name: "negative offset", builder: Select("id").From("matches").Limit(2).Offset(math.MinInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.builder.ToSQL(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID       string `db:"id"`
		Name     string `db:"name"`
		Country  string `db:"country,omitempty"`
		Ignored  string `db:"-"`
		internal string
	}

	query, args, err := InsertModel("clubs", &row{ID: "c1", Name: "Arsenal", Country: "England", Ignored: "y", internal: "x"}, "ON CONFLICT DO NOTHING RETURNING id")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO clubs (id, name, country) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "c1" || args[1] != "Arsenal" || args[2] != "England" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_Invalid(t *testing.T) {
	var nilRow *struct {
		ID string `db:"id"`
	}
	if _, _, err := InsertModel("clubs", nilRow, ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertModel("clubs", struct{ Name string }{Name: "x"}, ""); err == nil {
		t.Fatalf("expected error for model without db columns")
	}
	if _, _, err := InsertModel("", struct {
		ID string `db:"id"`
	}{}, ""); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("matches").
		Set("status", "COMPLETED").
		Set("updated_at", "2026-04-01").
		Where(Eq("id", "m1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET status = $1, updated_at = $2 WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "COMPLETED" || args[2] != "m1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Update("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for update without sets")
	}
}
