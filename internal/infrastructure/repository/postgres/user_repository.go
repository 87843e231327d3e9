package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-analysis/internal/domain/user"
	qb "github.com/riskibarqy/match-analysis/internal/platform/querybuilder"
)

type UserRepository struct {
	db queryer
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	insertModel := userInsertModel{
		UID:       strings.TrimSpace(u.UID),
		Name:      u.Name,
		Email:     u.Email,
		Phone:     optionalString(u.Phone),
		PhotoURL:  optionalString(u.PhotoURL),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	query, args, err := qb.InsertModel("users", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return user.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUID(ctx context.Context, uid string) (user.User, bool, error) {
	query, args, err := qb.Select("uid", "name", "email", "phone", "photo_url", "created_at", "updated_at").
		From("users").
		Where(qb.Eq("uid", uid)).
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

	return user.User{
		UID:       row.UID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     nullStringValue(row.Phone),
		PhotoURL:  nullStringValue(row.PhotoURL),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}
