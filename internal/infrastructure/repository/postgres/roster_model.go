package postgres

import "time"

type leaguePlayerTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	LeagueID       string    `db:"league_public_id"`
	MasterPlayerID string    `db:"master_player_public_id"`
	Status         string    `db:"status"`
	Interesting    bool      `db:"interesting"`
	ExpectedPrice  int       `db:"expected_price"`
	PaidPrice      int       `db:"paid_price"`
	Buyer          string    `db:"buyer"`
	Notes          string    `db:"notes"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type leaguePlayerInsertModel struct {
	PublicID       string    `db:"public_id"`
	LeagueID       string    `db:"league_public_id"`
	MasterPlayerID string    `db:"master_player_public_id"`
	Status         string    `db:"status"`
	Interesting    bool      `db:"interesting"`
	ExpectedPrice  int       `db:"expected_price"`
	PaidPrice      int       `db:"paid_price"`
	Buyer          string    `db:"buyer"`
	Notes          string    `db:"notes"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type rosterEntryRow struct {
	PublicID       string    `db:"public_id"`
	LeagueID       string    `db:"league_public_id"`
	MasterPlayerID string    `db:"master_player_public_id"`
	Status         string    `db:"status"`
	Interesting    bool      `db:"interesting"`
	ExpectedPrice  int       `db:"expected_price"`
	PaidPrice      int       `db:"paid_price"`
	Buyer          string    `db:"buyer"`
	Notes          string    `db:"notes"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	MasterName        string    `db:"master_name"`
	MasterClub        string    `db:"master_club"`
	MasterClassicRole string    `db:"master_classic_role"`
	MasterMantraRoles string    `db:"master_mantra_roles"`
	MasterListPrice   int       `db:"master_list_price"`
	MasterFVM         int       `db:"master_fvm"`
	MasterCreatedAt   time.Time `db:"master_created_at"`
	MasterUpdatedAt   time.Time `db:"master_updated_at"`
}

type rosterStatusCountsRow struct {
	Total        int `db:"total"`
	Available    int `db:"available"`
	Owned        int `db:"owned"`
	Removed      int `db:"removed"`
	TakenByOther int `db:"taken_by_other"`
	BudgetUsed   int `db:"budget_used"`
}

type rosterRoleCountRow struct {
	Role  string `db:"classic_role"`
	Count int    `db:"owned"`
}
