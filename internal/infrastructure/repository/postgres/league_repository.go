package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	qb "github.com/astatracker/fantacalcio-api/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) CreateWithOwner(ctx context.Context, item league.League, owner league.Membership) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create league: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	leagueQuery, leagueArgs, err := qb.InsertModel("leagues", leagueInsertModelFrom(item), "")
	if err != nil {
		return fmt.Errorf("build create league query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, leagueQuery, leagueArgs...); err != nil {
		return fmt.Errorf("create league: %w", err)
	}

	memberQuery, memberArgs, err := qb.InsertModel("league_members", leagueMemberInsertModelFrom(owner), "")
	if err != nil {
		return fmt.Errorf("build create league owner query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, memberQuery, memberArgs...); err != nil {
		return fmt.Errorf("create league owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create league tx: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", leagueID))
}

func (r *LeagueRepository) GetByJoinCode(ctx context.Context, joinCode string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("join_code", joinCode))
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	query, args, err := qb.Select("l.*").
		From("leagues l JOIN league_members lm ON lm.league_public_id = l.public_id").
		Where(qb.Eq("lm.user_public_id", userID)).
		OrderBy("l.created_at ASC", "l.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by user query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) UpdateSettings(ctx context.Context, item league.League) error {
	query, args, err := qb.Update("leagues").
		Set("name", item.Name).
		Set("budget", item.Budget).
		Set("max_players", item.MaxPlayers).
		Set("max_members", item.MaxMembers).
		Set("status", string(item.Status)).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update league: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update league: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update league: not found")
	}
	return nil
}

// Delete removes the league row. Memberships, league players, participants,
// and formations go with it through ON DELETE CASCADE.
func (r *LeagueRepository) Delete(ctx context.Context, leagueID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leagues WHERE public_id = $1`, leagueID)
	if err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected delete league: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete league: not found")
	}
	return nil
}

// AddMember inserts a membership while holding the league row lock so the
// member count check and the insert are atomic against concurrent joins.
func (r *LeagueRepository) AddMember(ctx context.Context, membership league.Membership, maxMembers int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx add league member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID int64
	if err := tx.GetContext(ctx, &lockedID,
		`SELECT id FROM leagues WHERE public_id = $1 FOR UPDATE`, membership.LeagueID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("add league member: league not found")
		}
		return fmt.Errorf("lock league for member insert: %w", err)
	}

	var memberCount int
	if err := tx.GetContext(ctx, &memberCount,
		`SELECT COUNT(*) FROM league_members WHERE league_public_id = $1`, membership.LeagueID); err != nil {
		return fmt.Errorf("count league members: %w", err)
	}
	if maxMembers > 0 && memberCount >= maxMembers {
		return league.ErrFull
	}

	query, args, err := qb.InsertModel("league_members", leagueMemberInsertModelFrom(membership), "")
	if err != nil {
		return fmt.Errorf("build add league member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add league member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add league member tx: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetMembership(ctx context.Context, leagueID, userID string) (league.Membership, bool, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_public_id", userID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.Membership{}, false, fmt.Errorf("build get league membership query: %w", err)
	}

	var row leagueMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Membership{}, false, nil
		}
		return league.Membership{}, false, fmt.Errorf("get league membership: %w", err)
	}
	return membershipFromRow(row), true, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.MemberOverview, error) {
	const query = `
SELECT lm.league_public_id, lm.user_public_id, lm.role, lm.team_name, lm.joined_at,
       u.username, u.display_name,
       COALESCE(agg.budget_used, 0) AS budget_used,
       COALESCE(agg.players_owned, 0) AS players_owned
FROM league_members lm
JOIN users u ON u.public_id = lm.user_public_id
LEFT JOIN (
    SELECT buyer, SUM(paid_price) AS budget_used, COUNT(*) AS players_owned
    FROM league_players
    WHERE league_public_id = $1 AND status = 'owned'
    GROUP BY buyer
) agg ON agg.buyer = lm.team_name
WHERE lm.league_public_id = $1
ORDER BY lm.joined_at ASC, lm.id ASC`

	var rows []leagueMemberOverviewRow
	if err := r.db.SelectContext(ctx, &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.MemberOverview, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.MemberOverview{
			Membership: league.Membership{
				LeagueID: row.LeagueID,
				UserID:   row.UserID,
				Role:     league.Role(row.Role),
				TeamName: row.TeamName,
				JoinedAt: row.JoinedAt,
			},
			Username:     row.Username,
			DisplayName:  row.DisplayName,
			BudgetUsed:   row.BudgetUsed,
			PlayersOwned: row.PlayersOwned,
		})
	}
	return out, nil
}

// RemoveMember deletes a membership and, when the departing member held the
// master role, promotes the earliest joined remaining member inside the same
// transaction. A sole member leaving keeps the league row around.
func (r *LeagueRepository) RemoveMember(ctx context.Context, leagueID, userID string) (league.TransferResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return league.TransferResult{}, fmt.Errorf("begin tx remove league member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID int64
	if err := tx.GetContext(ctx, &lockedID,
		`SELECT id FROM leagues WHERE public_id = $1 FOR UPDATE`, leagueID); err != nil {
		if isNotFound(err) {
			return league.TransferResult{}, nil
		}
		return league.TransferResult{}, fmt.Errorf("lock league for member removal: %w", err)
	}

	var departingRole string
	err = tx.GetContext(ctx, &departingRole,
		`DELETE FROM league_members WHERE league_public_id = $1 AND user_public_id = $2 RETURNING role`,
		leagueID, userID)
	if err != nil {
		if isNotFound(err) {
			return league.TransferResult{}, nil
		}
		return league.TransferResult{}, fmt.Errorf("remove league member: %w", err)
	}

	result := league.TransferResult{Removed: true}
	if league.Role(departingRole) == league.RoleMaster {
		var successor leagueMemberTableModel
		err := tx.GetContext(ctx, &successor,
			`SELECT * FROM league_members WHERE league_public_id = $1 ORDER BY joined_at ASC, id ASC LIMIT 1`,
			leagueID)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE league_members SET role = $1 WHERE id = $2`,
				string(league.RoleMaster), successor.ID); err != nil {
				return league.TransferResult{}, fmt.Errorf("promote league member: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE leagues SET owner_user_id = $1, updated_at = NOW() WHERE public_id = $2`,
				successor.UserID, leagueID); err != nil {
				return league.TransferResult{}, fmt.Errorf("update league owner: %w", err)
			}
			promoted := membershipFromRow(successor)
			promoted.Role = league.RoleMaster
			result.NewOwner = &promoted
		case isNotFound(err):
			// last member left, the league stays ownerless until deleted.
		default:
			return league.TransferResult{}, fmt.Errorf("find successor league member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return league.TransferResult{}, fmt.Errorf("commit remove league member tx: %w", err)
	}
	return result, nil
}

func (r *LeagueRepository) getOne(ctx context.Context, condition qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func leagueInsertModelFrom(item league.League) leagueInsertModel {
	return leagueInsertModel{
		PublicID:    item.ID,
		Name:        item.Name,
		JoinCode:    item.JoinCode,
		GameMode:    string(item.GameMode),
		Budget:      item.Budget,
		MaxPlayers:  item.MaxPlayers,
		MaxMembers:  item.MaxMembers,
		Status:      string(item.Status),
		OwnerUserID: item.OwnerUserID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func leagueMemberInsertModelFrom(membership league.Membership) leagueMemberInsertModel {
	return leagueMemberInsertModel{
		LeagueID: membership.LeagueID,
		UserID:   membership.UserID,
		Role:     string(membership.Role),
		TeamName: membership.TeamName,
		JoinedAt: membership.JoinedAt,
	}
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:          row.PublicID,
		Name:        row.Name,
		JoinCode:    row.JoinCode,
		GameMode:    league.GameMode(row.GameMode),
		Budget:      row.Budget,
		MaxPlayers:  row.MaxPlayers,
		MaxMembers:  row.MaxMembers,
		Status:      league.Status(row.Status),
		OwnerUserID: row.OwnerUserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func membershipFromRow(row leagueMemberTableModel) league.Membership {
	return league.Membership{
		LeagueID: row.LeagueID,
		UserID:   row.UserID,
		Role:     league.Role(row.Role),
		TeamName: row.TeamName,
		JoinedAt: row.JoinedAt,
	}
}
