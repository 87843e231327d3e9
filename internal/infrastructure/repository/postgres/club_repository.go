package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/platform/metrics"
	qb "github.com/riskibarqy/match-analysis/internal/platform/querybuilder"
)

type ClubRepository struct {
	db   queryer
	inTx bool
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	query, args, err := qb.Select(clubColumns...).From("clubs").
		OrderBy("name", "country", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select clubs query: %w", err)
	}

	var rows []clubTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select clubs: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, clubFromRow(row))
	}
	return out, nil
}

func (r *ClubRepository) GetByID(ctx context.Context, id string) (club.Club, bool, error) {
	return r.getOne(ctx, "get club by id", qb.Eq("id", id))
}

func (r *ClubRepository) GetByKey(ctx context.Context, key club.Key) (club.Club, bool, error) {
	return r.getOne(ctx, "get club by key", qb.Eq("name", key.Name), qb.Eq("country", key.Country))
}

func (r *ClubRepository) getOne(ctx context.Context, op string, conds ...qb.Condition) (club.Club, bool, error) {
	query, args, err := qb.Select(clubColumns...).From("clubs").Where(conds...).Limit(1).ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row clubTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return clubFromRow(row), true, nil
}

func (r *ClubRepository) InsertOrGet(ctx context.Context, c club.Club) (club.Club, bool, error) {
	return insertOrGet(ctx, r.db, r.inTx,
		func(ctx context.Context) (club.Club, bool, error) {
			return r.GetByKey(ctx, c.Key())
		},
		func(ctx context.Context) (club.Club, error) {
			return c, r.insert(ctx, c)
		},
		func() {
			metrics.ClubResolutions.WithLabelValues(metrics.OutcomeConflict).Inc()
		},
	)
}

func (r *ClubRepository) Create(ctx context.Context, c club.Club) error {
	if err := r.insert(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return club.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ClubRepository) insert(ctx context.Context, c club.Club) error {
	query, args, err := qb.InsertModel("clubs", clubInsertModel{
		ID:        c.ID,
		Name:      c.Name,
		Country:   c.Country,
		LogoURL:   optionalString(c.LogoURL),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert club query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert club: %w", err)
	}
	return nil
}

func (r *ClubRepository) Update(ctx context.Context, c club.Club) (bool, error) {
	query, args, err := qb.Update("clubs").
		Set("name", c.Name).
		Set("country", c.Country).
		Set("logo_url", optionalString(c.LogoURL)).
		Set("updated_at", c.UpdatedAt).
		Where(qb.Eq("id", c.ID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update club query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, club.ErrDuplicate
		}
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update club: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update club rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ClubRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clubs WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, club.ErrInUse
		}
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete club: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete club rows affected: %w", err)
	}
	return affected > 0, nil
}

func clubFromRow(row clubTableModel) club.Club {
	return club.Club{
		ID:        row.ID,
		Name:      row.Name,
		Country:   row.Country,
		LogoURL:   nullStringValue(row.LogoURL),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
