package postgres

import "time"

type leagueTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	JoinCode    string    `db:"join_code"`
	GameMode    string    `db:"game_mode"`
	Budget      int       `db:"budget"`
	MaxPlayers  int       `db:"max_players"`
	MaxMembers  int       `db:"max_members"`
	Status      string    `db:"status"`
	OwnerUserID string    `db:"owner_user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	JoinCode    string    `db:"join_code"`
	GameMode    string    `db:"game_mode"`
	Budget      int       `db:"budget"`
	MaxPlayers  int       `db:"max_players"`
	MaxMembers  int       `db:"max_members"`
	Status      string    `db:"status"`
	OwnerUserID string    `db:"owner_user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type leagueMemberTableModel struct {
	ID       int64     `db:"id"`
	LeagueID string    `db:"league_public_id"`
	UserID   string    `db:"user_public_id"`
	Role     string    `db:"role"`
	TeamName string    `db:"team_name"`
	JoinedAt time.Time `db:"joined_at"`
}

type leagueMemberInsertModel struct {
	LeagueID string    `db:"league_public_id"`
	UserID   string    `db:"user_public_id"`
	Role     string    `db:"role"`
	TeamName string    `db:"team_name"`
	JoinedAt time.Time `db:"joined_at"`
}

type leagueMemberOverviewRow struct {
	LeagueID     string    `db:"league_public_id"`
	UserID       string    `db:"user_public_id"`
	Role         string    `db:"role"`
	TeamName     string    `db:"team_name"`
	JoinedAt     time.Time `db:"joined_at"`
	Username     string    `db:"username"`
	DisplayName  string    `db:"display_name"`
	BudgetUsed   int       `db:"budget_used"`
	PlayersOwned int       `db:"players_owned"`
}
