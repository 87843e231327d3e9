package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-analysis/internal/domain/match"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
	qb "github.com/riskibarqy/match-analysis/internal/platform/querybuilder"
	"github.com/sourcegraph/conc/pool"
)

type MatchRepository struct {
	db   queryer
	inTx bool
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	query, args, err := qb.InsertModel("matches", matchInsertModel{
		ID:               m.ID,
		OwnerUID:         m.OwnerUID,
		VideoURL:         m.VideoURL,
		LineupImageURL:   optionalString(m.LineupImageURL),
		CompetitiveLevel: optionalString(m.CompetitiveLevel),
		Status:           string(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *MatchRepository) CreateClub(ctx context.Context, c match.Club) error {
	query, args, err := qb.InsertModel("match_clubs", matchClubInsertModel{
		ID:          c.ID,
		MatchID:     c.MatchID,
		ClubID:      c.ClubID,
		Name:        c.Name,
		Country:     c.Country,
		JerseyColor: optionalString(c.JerseyColor),
		IsUserTeam:  c.IsUserTeam,
		TeamRole:    string(c.TeamRole),
		CreatedAt:   c.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match club query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match club: %w", err)
	}
	return nil
}

func (r *MatchRepository) CreatePlayer(ctx context.Context, p match.Player) error {
	query, args, err := qb.InsertModel("match_players", matchPlayerInsertModel{
		ID:              p.ID,
		MatchID:         p.MatchID,
		MatchClubID:     p.MatchClubID,
		PlayerProfileID: optionalString(p.PlayerProfileID),
		FirstName:       optionalString(p.FirstName),
		LastName:        optionalString(p.LastName),
		JerseyNumber:    p.JerseyNumber,
		Position:        p.Position,
		IsUserTeam:      p.IsUserTeam,
		CreatedAt:       p.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match player: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

const (
	selectMatchClubsQuery = `
SELECT id, match_id, club_id, name, country, jersey_color, is_user_team, team_role, created_at
FROM match_clubs
WHERE match_id = $1
ORDER BY is_user_team DESC, team_role DESC, id`

	selectMatchPlayersQuery = `
SELECT
    mp.id,
    mp.match_id,
    mp.match_club_id,
    mp.player_profile_id,
    mp.first_name,
    mp.last_name,
    mp.jersey_number,
    mp.position,
    mp.is_user_team,
    mp.created_at,
    pp.first_name AS profile_first_name,
    pp.last_name AS profile_last_name,
    pp.date_of_birth AS profile_date_of_birth,
    pp.country AS profile_country,
    pp.primary_position AS profile_primary_position,
    pp.avatar AS profile_avatar,
    pp.created_at AS profile_created_at,
    pp.updated_at AS profile_updated_at
FROM match_players mp
LEFT JOIN player_profiles pp ON pp.id = mp.player_profile_id
WHERE mp.match_id = $1
ORDER BY mp.is_user_team DESC, mp.jersey_number, mp.id`

	selectMatchResultQuery = `
SELECT match_id, payload, created_at, updated_at
FROM match_results
WHERE match_id = $1`
)

// GetDetail reads the match and then its clubs, players and result in
// parallel. Inside a transaction the child reads run one at a time because a
// tx connection cannot serve concurrent queries.
func (r *MatchRepository) GetDetail(ctx context.Context, id string) (match.Detail, bool, error) {
	m, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return match.Detail{}, found, err
	}

	var (
		clubRows   []matchClubTableModel
		playerRows []matchPlayerDetailRow
		resultRows []matchResultTableModel
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	if r.inTx {
		p = p.WithMaxGoroutines(1)
	}
	p.Go(func(ctx context.Context) error {
		if err := r.db.SelectContext(ctx, &clubRows, selectMatchClubsQuery, m.ID); err != nil {
			return fmt.Errorf("select match clubs: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := r.db.SelectContext(ctx, &playerRows, selectMatchPlayersQuery, m.ID); err != nil {
			return fmt.Errorf("select match players: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := r.db.SelectContext(ctx, &resultRows, selectMatchResultQuery, m.ID); err != nil {
			return fmt.Errorf("select match result: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return match.Detail{}, false, err
	}

	detail := match.Detail{
		Match:   m,
		Clubs:   make([]match.Club, 0, len(clubRows)),
		Players: make([]match.PlayerDetail, 0, len(playerRows)),
	}
	for _, row := range clubRows {
		detail.Clubs = append(detail.Clubs, match.Club{
			ID:          row.ID,
			MatchID:     row.MatchID,
			ClubID:      row.ClubID,
			Name:        row.Name,
			Country:     row.Country,
			JerseyColor: nullStringValue(row.JerseyColor),
			IsUserTeam:  row.IsUserTeam,
			TeamRole:    match.TeamRole(row.TeamRole),
			CreatedAt:   row.CreatedAt,
		})
	}
	for _, row := range playerRows {
		detail.Players = append(detail.Players, playerDetailFromRow(row))
	}
	if len(resultRows) > 0 {
		row := resultRows[0]
		detail.Result = &match.Result{
			MatchID:   row.MatchID,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return detail, true, nil
}

func playerDetailFromRow(row matchPlayerDetailRow) match.PlayerDetail {
	out := match.PlayerDetail{
		Player: match.Player{
			ID:              row.ID,
			MatchID:         row.MatchID,
			MatchClubID:     row.MatchClubID,
			PlayerProfileID: nullStringValue(row.PlayerProfileID),
			FirstName:       nullStringValue(row.FirstName),
			LastName:        nullStringValue(row.LastName),
			JerseyNumber:    row.JerseyNumber,
			Position:        row.Position,
			IsUserTeam:      row.IsUserTeam,
			CreatedAt:       row.CreatedAt,
		},
	}
	if row.PlayerProfileID.Valid && row.ProfileDateOfBirth.Valid {
		out.Profile = &playerprofile.Profile{
			ID:              row.PlayerProfileID.String,
			FirstName:       nullStringValue(row.ProfileFirstName),
			LastName:        nullStringValue(row.ProfileLastName),
			DateOfBirth:     row.ProfileDateOfBirth.Time.UTC(),
			Country:         nullStringValue(row.ProfileCountry),
			PrimaryPosition: nullStringValue(row.ProfilePrimaryPosition),
			Avatar:          nullStringValue(row.ProfileAvatar),
			CreatedAt:       row.ProfileCreatedAt.Time,
			UpdatedAt:       row.ProfileUpdatedAt.Time,
		}
	}
	return out
}

func (r *MatchRepository) ListByOwner(ctx context.Context, ownerUID string) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(qb.Eq("owner_uid", ownerUID)).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by owner query: %w", err)
	}
	return r.selectMatches(ctx, "list matches by owner", query, args)
}

func (r *MatchRepository) List(ctx context.Context, offset, limit int) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}
	return r.selectMatches(ctx, "list matches", query, args)
}

func (r *MatchRepository) selectMatches(ctx context.Context, op, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, status match.Status) (bool, error) {
	return r.updateColumn(ctx, "update match status", id, "status", string(status))
}

func (r *MatchRepository) UpdateLineupImage(ctx context.Context, id, url string) (bool, error) {
	return r.updateColumn(ctx, "update match lineup image", id, "lineup_image_url", optionalString(url))
}

func (r *MatchRepository) updateColumn(ctx context.Context, op, id, column string, value any) (bool, error) {
	query, args, err := qb.Update("matches").
		Set(column, value).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return affected > 0, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:               row.ID,
		OwnerUID:         row.OwnerUID,
		VideoURL:         row.VideoURL,
		LineupImageURL:   nullStringValue(row.LineupImageURL),
		CompetitiveLevel: nullStringValue(row.CompetitiveLevel),
		Status:           match.Status(row.Status),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
