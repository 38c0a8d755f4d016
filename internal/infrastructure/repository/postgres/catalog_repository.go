package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	qb "github.com/astatracker/fantacalcio-api/internal/platform/querybuilder"
)

type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetByID(ctx context.Context, playerID string) (catalog.MasterPlayer, bool, error) {
	query, args, err := qb.Select("*").From("master_players").
		Where(qb.Eq("public_id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return catalog.MasterPlayer{}, false, fmt.Errorf("build get master player query: %w", err)
	}

	var row masterPlayerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return catalog.MasterPlayer{}, false, nil
		}
		return catalog.MasterPlayer{}, false, fmt.Errorf("get master player by id: %w", err)
	}
	return masterPlayerFromRow(row), true, nil
}

func (r *CatalogRepository) FindByNameAndClub(ctx context.Context, normalizedName, club string) (catalog.MasterPlayer, bool, error) {
	query, args, err := qb.Select("*").From("master_players").
		Where(
			qb.Eq("name", normalizedName),
			qb.Expr("LOWER(club) = LOWER(?)", club),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return catalog.MasterPlayer{}, false, fmt.Errorf("build find master player query: %w", err)
	}

	var row masterPlayerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return catalog.MasterPlayer{}, false, nil
		}
		return catalog.MasterPlayer{}, false, fmt.Errorf("find master player by name and club: %w", err)
	}
	return masterPlayerFromRow(row), true, nil
}

func (r *CatalogRepository) Create(ctx context.Context, item catalog.MasterPlayer) error {
	insertModel := masterPlayerInsertModel{
		PublicID:    item.ID,
		Name:        item.Name,
		Club:        item.Club,
		ClassicRole: item.ClassicRole,
		MantraRoles: joinTags(item.MantraRoles),
		ListPrice:   item.ListPrice,
		FVM:         item.FVM,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("master_players", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create master player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create master player: %w", err)
	}
	return nil
}

func (r *CatalogRepository) Update(ctx context.Context, item catalog.MasterPlayer) error {
	query, args, err := qb.Update("master_players").
		Set("classic_role", item.ClassicRole).
		Set("mantra_roles", joinTags(item.MantraRoles)).
		Set("list_price", item.ListPrice).
		Set("fvm", item.FVM).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update master player query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update master player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update master player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update master player: not found")
	}
	return nil
}

func masterPlayerFromRow(row masterPlayerTableModel) catalog.MasterPlayer {
	return catalog.MasterPlayer{
		ID:          row.PublicID,
		Name:        row.Name,
		Club:        row.Club,
		ClassicRole: row.ClassicRole,
		MantraRoles: splitTags(row.MantraRoles),
		ListPrice:   row.ListPrice,
		FVM:         row.FVM,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
