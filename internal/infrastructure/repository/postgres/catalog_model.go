package postgres

import "time"

type masterPlayerTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	Club        string    `db:"club"`
	ClassicRole string    `db:"classic_role"`
	MantraRoles string    `db:"mantra_roles"`
	ListPrice   int       `db:"list_price"`
	FVM         int       `db:"fvm"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type masterPlayerInsertModel struct {
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	Club        string    `db:"club"`
	ClassicRole string    `db:"classic_role"`
	MantraRoles string    `db:"mantra_roles"`
	ListPrice   int       `db:"list_price"`
	FVM         int       `db:"fvm"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
