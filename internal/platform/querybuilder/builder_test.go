package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("public_id", "name").
		From("leagues").
		Where(Eq("owner_user_id", "usr-1"), IsNull("archived_at")).
		OrderBy("created_at ASC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT public_id, name FROM leagues WHERE owner_user_id = $1 AND archived_at IS NULL ORDER BY created_at ASC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "usr-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprAndIn(t *testing.T) {
	query, args, err := Select("lp.public_id").
		From("league_players lp").
		Where(
			Eq("lp.league_public_id", "lg-1"),
			In("lp.status", []any{"owned", "taken_by_other"}),
			Expr("(mp.name ILIKE ? OR mp.club ILIKE ?)", "%rossi%", "%rossi%"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT lp.public_id FROM league_players lp WHERE lp.league_public_id = $1" +
		" AND lp.status IN ($2, $3) AND (mp.name ILIKE $4 OR mp.club ILIKE $5)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 5 || args[1] != "owned" || args[4] != "%rossi%" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("participants").
		Columns("public_id", "name").
		Values("vp-1", "Zio Piero").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO participants (public_id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "vp-1" || args[1] != "Zio Piero" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowShapeMismatch(t *testing.T) {
	_, _, err := InsertInto("participants").
		Columns("public_id", "name").
		Values("vp-1").
		ToSQL()
	if err == nil {
		t.Fatalf("expected error for short value row")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("league_players").
		Set("status", "owned").
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "lp-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE league_players SET status = $1, updated_at = NOW() WHERE public_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "owned" || args[1] != "lp-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
