package postgres

import "time"

type formationTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	LeagueID  string    `db:"league_public_id"`
	UserID    string    `db:"user_public_id"`
	Name      string    `db:"name"`
	Schema    string    `db:"schema"`
	PlayerIDs string    `db:"player_ids"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type formationInsertModel struct {
	PublicID  string    `db:"public_id"`
	LeagueID  string    `db:"league_public_id"`
	UserID    string    `db:"user_public_id"`
	Name      string    `db:"name"`
	Schema    string    `db:"schema"`
	PlayerIDs string    `db:"player_ids"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
