package postgres

import "time"

type participantTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	LeagueID  string    `db:"league_public_id"`
	Name      string    `db:"name"`
	Budget    int       `db:"budget"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type participantInsertModel struct {
	PublicID  string    `db:"public_id"`
	LeagueID  string    `db:"league_public_id"`
	Name      string    `db:"name"`
	Budget    int       `db:"budget"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
