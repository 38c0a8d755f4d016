package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	qb "github.com/astatracker/fantacalcio-api/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, account user.User) error {
	insertModel := userInsertModel{
		PublicID:     account.ID,
		Username:     account.Username,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		PasswordHash: account.PasswordHash,
		IsActive:     account.Active,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
	query, args, err := qb.InsertModel("users", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", userID))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("username", username))
}

func (r *UserRepository) Update(ctx context.Context, account user.User) error {
	query, args, err := qb.Update("users").
		Set("display_name", account.DisplayName).
		Set("password_hash", account.PasswordHash).
		Set("is_active", account.Active).
		Set("updated_at", account.UpdatedAt).
		Where(qb.Eq("public_id", account.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update user query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update user: not found")
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, condition qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), true, nil
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:           row.PublicID,
		Username:     row.Username,
		Email:        row.Email,
		DisplayName:  row.DisplayName,
		PasswordHash: row.PasswordHash,
		Active:       row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
