package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astatracker/fantacalcio-api/internal/domain/formation"
	qb "github.com/astatracker/fantacalcio-api/internal/platform/querybuilder"
)

type FormationRepository struct {
	db *sqlx.DB
}

func NewFormationRepository(db *sqlx.DB) *FormationRepository {
	return &FormationRepository{db: db}
}

func (r *FormationRepository) List(ctx context.Context, leagueID, userID string) ([]formation.Formation, error) {
	query, args, err := qb.Select("*").From("formations").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_public_id", userID),
		).
		OrderBy("created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formations query: %w", err)
	}

	var rows []formationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list formations: %w", err)
	}

	out := make([]formation.Formation, 0, len(rows))
	for _, row := range rows {
		out = append(out, formationFromRow(row))
	}
	return out, nil
}

func (r *FormationRepository) GetByID(ctx context.Context, leagueID, formationID string) (formation.Formation, bool, error) {
	query, args, err := qb.Select("*").From("formations").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("public_id", formationID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return formation.Formation{}, false, fmt.Errorf("build get formation query: %w", err)
	}

	var row formationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return formation.Formation{}, false, nil
		}
		return formation.Formation{}, false, fmt.Errorf("get formation: %w", err)
	}
	return formationFromRow(row), true, nil
}

func (r *FormationRepository) Create(ctx context.Context, item formation.Formation) error {
	insertModel := formationInsertModel{
		PublicID:  item.ID,
		LeagueID:  item.LeagueID,
		UserID:    item.UserID,
		Name:      item.Name,
		Schema:    item.Schema,
		PlayerIDs: joinTags(item.PlayerIDs),
		Notes:     item.Notes,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("formations", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create formation query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create formation: %w", err)
	}
	return nil
}

func (r *FormationRepository) Update(ctx context.Context, item formation.Formation) error {
	query, args, err := qb.Update("formations").
		Set("name", item.Name).
		Set("schema", item.Schema).
		Set("player_ids", joinTags(item.PlayerIDs)).
		Set("notes", item.Notes).
		Set("updated_at", item.UpdatedAt).
		Where(
			qb.Eq("public_id", item.ID),
			qb.Eq("league_public_id", item.LeagueID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update formation query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update formation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update formation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update formation: not found")
	}
	return nil
}

func (r *FormationRepository) Delete(ctx context.Context, leagueID, formationID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM formations WHERE league_public_id = $1 AND public_id = $2`,
		leagueID, formationID)
	if err != nil {
		return fmt.Errorf("delete formation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected delete formation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete formation: not found")
	}
	return nil
}

func formationFromRow(row formationTableModel) formation.Formation {
	return formation.Formation{
		ID:        row.PublicID,
		LeagueID:  row.LeagueID,
		UserID:    row.UserID,
		Name:      row.Name,
		Schema:    row.Schema,
		PlayerIDs: splitTags(row.PlayerIDs),
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
