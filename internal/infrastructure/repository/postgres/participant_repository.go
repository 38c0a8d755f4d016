package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astatracker/fantacalcio-api/internal/domain/participant"
	qb "github.com/astatracker/fantacalcio-api/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) List(ctx context.Context, leagueID string) ([]participant.Participant, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("name ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, leagueID, participantID string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("public_id", participantID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}
	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) Create(ctx context.Context, item participant.Participant) error {
	insertModel := participantInsertModel{
		PublicID:  item.ID,
		LeagueID:  item.LeagueID,
		Name:      item.Name,
		Budget:    item.Budget,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("participants", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create participant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) Update(ctx context.Context, item participant.Participant) error {
	query, args, err := qb.Update("participants").
		Set("name", item.Name).
		Set("budget", item.Budget).
		Set("updated_at", item.UpdatedAt).
		Where(
			qb.Eq("public_id", item.ID),
			qb.Eq("league_public_id", item.LeagueID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update participant query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update participant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update participant: not found")
	}
	return nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, leagueID, participantID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM participants WHERE league_public_id = $1 AND public_id = $2`,
		leagueID, participantID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected delete participant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete participant: not found")
	}
	return nil
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:        row.PublicID,
		LeagueID:  row.LeagueID,
		Name:      row.Name,
		Budget:    row.Budget,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
