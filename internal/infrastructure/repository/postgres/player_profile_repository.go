package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
	"github.com/riskibarqy/match-analysis/internal/platform/metrics"
	qb "github.com/riskibarqy/match-analysis/internal/platform/querybuilder"
)

type PlayerProfileRepository struct {
	db   queryer
	inTx bool
}

func NewPlayerProfileRepository(db *sqlx.DB) *PlayerProfileRepository {
	return &PlayerProfileRepository{db: db}
}

func (r *PlayerProfileRepository) List(ctx context.Context) ([]playerprofile.Profile, error) {
	return r.Search(ctx, playerprofile.Filter{})
}

func (r *PlayerProfileRepository) Search(ctx context.Context, filter playerprofile.Filter) ([]playerprofile.Profile, error) {
	conds := make([]qb.Condition, 0, 4)
	if filter.FirstName != "" {
		conds = append(conds, qb.ContainsFold("first_name", filter.FirstName))
	}
	if filter.LastName != "" {
		conds = append(conds, qb.ContainsFold("last_name", filter.LastName))
	}
	if filter.Country != "" {
		conds = append(conds, qb.ContainsFold("country", filter.Country))
	}
	if filter.DateOfBirth != nil {
		conds = append(conds, qb.Eq("date_of_birth", *filter.DateOfBirth))
	}

	query, args, err := qb.Select(playerProfileColumns...).From("player_profiles").
		Where(conds...).
		OrderBy("last_name", "first_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search player profiles query: %w", err)
	}

	var rows []playerProfileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search player profiles: %w", err)
	}

	out := make([]playerprofile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerProfileFromRow(row))
	}
	return out, nil
}

func (r *PlayerProfileRepository) GetByID(ctx context.Context, id string) (playerprofile.Profile, bool, error) {
	return r.getOne(ctx, "get player profile by id", qb.Eq("id", id))
}

func (r *PlayerProfileRepository) GetByKey(ctx context.Context, key playerprofile.Key) (playerprofile.Profile, bool, error) {
	return r.getOne(ctx, "get player profile by key",
		qb.Eq("first_name", key.FirstName),
		qb.Eq("last_name", key.LastName),
		qb.Eq("date_of_birth", key.DateOfBirth),
		qb.Eq("country", key.Country),
	)
}

func (r *PlayerProfileRepository) getOne(ctx context.Context, op string, conds ...qb.Condition) (playerprofile.Profile, bool, error) {
	query, args, err := qb.Select(playerProfileColumns...).From("player_profiles").Where(conds...).Limit(1).ToSQL()
	if err != nil {
		return playerprofile.Profile{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row playerProfileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerprofile.Profile{}, false, nil
		}
		return playerprofile.Profile{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return playerProfileFromRow(row), true, nil
}

func (r *PlayerProfileRepository) InsertOrGet(ctx context.Context, p playerprofile.Profile) (playerprofile.Profile, bool, error) {
	return insertOrGet(ctx, r.db, r.inTx,
		func(ctx context.Context) (playerprofile.Profile, bool, error) {
			return r.GetByKey(ctx, p.Key())
		},
		func(ctx context.Context) (playerprofile.Profile, error) {
			return p, r.insert(ctx, p)
		},
		func() {
			metrics.ProfileResolutions.WithLabelValues(metrics.OutcomeConflict).Inc()
		},
	)
}

func (r *PlayerProfileRepository) insert(ctx context.Context, p playerprofile.Profile) error {
	query, args, err := qb.InsertModel("player_profiles", playerProfileInsertModel{
		ID:              p.ID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		DateOfBirth:     p.DateOfBirth,
		Country:         p.Country,
		PrimaryPosition: optionalString(p.PrimaryPosition),
		Avatar:          optionalString(p.Avatar),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert player profile query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player profile: %w", err)
	}
	return nil
}

func (r *PlayerProfileRepository) Update(ctx context.Context, p playerprofile.Profile) (bool, error) {
	query, args, err := qb.Update("player_profiles").
		Set("first_name", p.FirstName).
		Set("last_name", p.LastName).
		Set("date_of_birth", p.DateOfBirth).
		Set("country", p.Country).
		Set("primary_position", optionalString(p.PrimaryPosition)).
		Set("avatar", optionalString(p.Avatar)).
		Set("updated_at", p.UpdatedAt).
		Where(qb.Eq("id", p.ID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update player profile query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, playerprofile.ErrDuplicate
		}
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update player profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update player profile rows affected: %w", err)
	}
	return affected > 0, nil
}

func playerProfileFromRow(row playerProfileTableModel) playerprofile.Profile {
	return playerprofile.Profile{
		ID:              row.ID,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		DateOfBirth:     row.DateOfBirth.UTC(),
		Country:         row.Country,
		PrimaryPosition: nullStringValue(row.PrimaryPosition),
		Avatar:          nullStringValue(row.Avatar),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
