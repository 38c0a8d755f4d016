package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	qb "github.com/astatracker/fantacalcio-api/internal/platform/querybuilder"
)

const rosterEntryColumns = `lp.public_id, lp.league_public_id, lp.master_player_public_id,
lp.status, lp.interesting, lp.expected_price, lp.paid_price, lp.buyer, lp.notes,
lp.created_at, lp.updated_at,
mp.name AS master_name, mp.club AS master_club, mp.classic_role AS master_classic_role,
mp.mantra_roles AS master_mantra_roles, mp.list_price AS master_list_price, mp.fvm AS master_fvm,
mp.created_at AS master_created_at, mp.updated_at AS master_updated_at`

const rosterEntryFrom = `league_players lp JOIN master_players mp ON mp.public_id = lp.master_player_public_id`

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetByID(ctx context.Context, leagueID, playerID string) (roster.Entry, bool, error) {
	query, args, err := qb.Select(rosterEntryColumns).
		From(rosterEntryFrom).
		Where(
			qb.Eq("lp.league_public_id", leagueID),
			qb.Eq("lp.public_id", playerID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Entry{}, false, fmt.Errorf("build get league player query: %w", err)
	}

	var row rosterEntryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Entry{}, false, nil
		}
		return roster.Entry{}, false, fmt.Errorf("get league player: %w", err)
	}
	return entryFromRow(row), true, nil
}

func (r *RosterRepository) GetByMasterPlayer(ctx context.Context, leagueID, masterPlayerID string) (roster.LeaguePlayer, bool, error) {
	query, args, err := qb.Select("*").From("league_players").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("master_player_public_id", masterPlayerID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.LeaguePlayer{}, false, fmt.Errorf("build get league player by master query: %w", err)
	}

	var row leaguePlayerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.LeaguePlayer{}, false, nil
		}
		return roster.LeaguePlayer{}, false, fmt.Errorf("get league player by master: %w", err)
	}
	return leaguePlayerFromRow(row), true, nil
}

func (r *RosterRepository) List(ctx context.Context, leagueID string, filter roster.Filter) ([]roster.Entry, error) {
	conditions := []qb.Condition{qb.Eq("lp.league_public_id", leagueID)}
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("lp.status", string(filter.Status)))
	}
	if filter.Interesting {
		conditions = append(conditions, qb.Eq("lp.interesting", true))
	}
	if role := strings.TrimSpace(filter.Role); role != "" {
		conditions = append(conditions, qb.Expr(
			"(mp.classic_role = ? OR mp.mantra_roles ILIKE ?)",
			role, "%"+role+"%",
		))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := "%" + search + "%"
		conditions = append(conditions, qb.Expr(
			"(mp.name ILIKE ? OR mp.club ILIKE ?)",
			needle, needle,
		))
	}

	query, args, err := qb.Select(rosterEntryColumns).
		From(rosterEntryFrom).
		Where(conditions...).
		OrderBy("mp.name ASC", "lp.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league players query: %w", err)
	}

	var rows []rosterEntryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league players: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}
	return out, nil
}

func (r *RosterRepository) Update(ctx context.Context, item roster.LeaguePlayer) error {
	query, args, err := qb.Update("league_players").
		Set("status", string(item.Status)).
		Set("interesting", item.Interesting).
		Set("expected_price", item.ExpectedPrice).
		Set("paid_price", item.PaidPrice).
		Set("buyer", item.Buyer).
		Set("notes", item.Notes).
		Set("updated_at", item.UpdatedAt).
		Where(
			qb.Eq("public_id", item.ID),
			qb.Eq("league_public_id", item.LeagueID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league player query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update league player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update league player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update league player: not found")
	}
	return nil
}

func (r *RosterRepository) Stats(ctx context.Context, leagueID string) (roster.Stats, error) {
	const countsQuery = `
SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE status = 'available') AS available,
       COUNT(*) FILTER (WHERE status = 'owned') AS owned,
       COUNT(*) FILTER (WHERE status = 'removed') AS removed,
       COUNT(*) FILTER (WHERE status = 'taken_by_other') AS taken_by_other,
       COALESCE(SUM(paid_price) FILTER (WHERE status = 'owned'), 0) AS budget_used
FROM league_players
WHERE league_public_id = $1`

	var counts rosterStatusCountsRow
	if err := r.db.GetContext(ctx, &counts, countsQuery, leagueID); err != nil {
		return roster.Stats{}, fmt.Errorf("count league players: %w", err)
	}

	const roleQuery = `
SELECT mp.classic_role, COUNT(*) AS owned
FROM league_players lp
JOIN master_players mp ON mp.public_id = lp.master_player_public_id
WHERE lp.league_public_id = $1 AND lp.status = 'owned' AND mp.classic_role <> ''
GROUP BY mp.classic_role`

	var roleRows []rosterRoleCountRow
	if err := r.db.SelectContext(ctx, &roleRows, roleQuery, leagueID); err != nil {
		return roster.Stats{}, fmt.Errorf("count owned players by role: %w", err)
	}

	stats := roster.Stats{
		Total:        counts.Total,
		Available:    counts.Available,
		Owned:        counts.Owned,
		Removed:      counts.Removed,
		TakenByOther: counts.TakenByOther,
		BudgetUsed:   counts.BudgetUsed,
		OwnedByRole:  make(map[string]int, len(roleRows)),
	}
	for _, row := range roleRows {
		stats.OwnedByRole[row.Role] = row.Count
	}
	return stats, nil
}

// UpsertImported writes one import batch in a single transaction. Existing
// rows only get updated_at refreshed: Status, Buyer, PaidPrice, and the
// member-set overlay fields survive every re-import. The xmax = 0 check
// distinguishes inserted rows from conflicting ones.
func (r *RosterRepository) UpsertImported(ctx context.Context, leagueID string, players []roster.LeaguePlayer) (int, int, error) {
	if len(players) == 0 {
		return 0, 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx import league players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertQuery = `
INSERT INTO league_players
    (public_id, league_public_id, master_player_public_id, status, interesting,
     expected_price, paid_price, buyer, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (league_public_id, master_player_public_id)
DO UPDATE SET updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted`

	inserted, updated := 0, 0
	for _, item := range players {
		if item.LeagueID != leagueID {
			return 0, 0, fmt.Errorf("import league players: row league=%s does not match batch league=%s", item.LeagueID, leagueID)
		}
		var wasInsert bool
		if err := tx.GetContext(ctx, &wasInsert, upsertQuery,
			item.ID, item.LeagueID, item.MasterPlayerID, string(item.Status), item.Interesting,
			item.ExpectedPrice, item.PaidPrice, item.Buyer, item.Notes, item.CreatedAt, item.UpdatedAt,
		); err != nil {
			return 0, 0, fmt.Errorf("upsert league player master=%s: %w", item.MasterPlayerID, err)
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import league players tx: %w", err)
	}
	return inserted, updated, nil
}

func leaguePlayerFromRow(row leaguePlayerTableModel) roster.LeaguePlayer {
	return roster.LeaguePlayer{
		ID:             row.PublicID,
		LeagueID:       row.LeagueID,
		MasterPlayerID: row.MasterPlayerID,
		Status:         roster.Status(row.Status),
		Interesting:    row.Interesting,
		ExpectedPrice:  row.ExpectedPrice,
		PaidPrice:      row.PaidPrice,
		Buyer:          row.Buyer,
		Notes:          row.Notes,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func entryFromRow(row rosterEntryRow) roster.Entry {
	return roster.Entry{
		LeaguePlayer: roster.LeaguePlayer{
			ID:             row.PublicID,
			LeagueID:       row.LeagueID,
			MasterPlayerID: row.MasterPlayerID,
			Status:         roster.Status(row.Status),
			Interesting:    row.Interesting,
			ExpectedPrice:  row.ExpectedPrice,
			PaidPrice:      row.PaidPrice,
			Buyer:          row.Buyer,
			Notes:          row.Notes,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		},
		Master: catalog.MasterPlayer{
			ID:          row.MasterPlayerID,
			Name:        row.MasterName,
			Club:        row.MasterClub,
			ClassicRole: row.MasterClassicRole,
			MantraRoles: splitTags(row.MasterMantraRoles),
			ListPrice:   row.MasterListPrice,
			FVM:         row.MasterFVM,
			CreatedAt:   row.MasterCreatedAt,
			UpdatedAt:   row.MasterUpdatedAt,
		},
	}
}
