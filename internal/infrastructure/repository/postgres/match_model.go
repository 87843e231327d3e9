package postgres

import (
	"database/sql"
	"time"
)

var matchColumns = []string{
	"id",
	"owner_uid",
	"video_url",
	"lineup_image_url",
	"competitive_level",
	"status",
	"created_at",
	"updated_at",
}

type matchTableModel struct {
	ID               string         `db:"id"`
	OwnerUID         string         `db:"owner_uid"`
	VideoURL         string         `db:"video_url"`
	LineupImageURL   sql.NullString `db:"lineup_image_url"`
	CompetitiveLevel sql.NullString `db:"competitive_level"`
	Status           string         `db:"status"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	ID               string    `db:"id"`
	OwnerUID         string    `db:"owner_uid"`
	VideoURL         string    `db:"video_url"`
	LineupImageURL   *string   `db:"lineup_image_url"`
	CompetitiveLevel *string   `db:"competitive_level"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type matchClubTableModel struct {
	ID          string         `db:"id"`
	MatchID     string         `db:"match_id"`
	ClubID      string         `db:"club_id"`
	Name        string         `db:"name"`
	Country     string         `db:"country"`
	JerseyColor sql.NullString `db:"jersey_color"`
	IsUserTeam  bool           `db:"is_user_team"`
	TeamRole    string         `db:"team_role"`
	CreatedAt   time.Time      `db:"created_at"`
}

type matchClubInsertModel struct {
	ID          string    `db:"id"`
	MatchID     string    `db:"match_id"`
	ClubID      string    `db:"club_id"`
	Name        string    `db:"name"`
	Country     string    `db:"country"`
	JerseyColor *string   `db:"jersey_color"`
	IsUserTeam  bool      `db:"is_user_team"`
	TeamRole    string    `db:"team_role"`
	CreatedAt   time.Time `db:"created_at"`
}

type matchPlayerInsertModel struct {
	ID              string    `db:"id"`
	MatchID         string    `db:"match_id"`
	MatchClubID     string    `db:"match_club_id"`
	PlayerProfileID *string   `db:"player_profile_id"`
	FirstName       *string   `db:"first_name"`
	LastName        *string   `db:"last_name"`
	JerseyNumber    int       `db:"jersey_number"`
	Position        string    `db:"position"`
	IsUserTeam      bool      `db:"is_user_team"`
	CreatedAt       time.Time `db:"created_at"`
}

// matchPlayerDetailRow is a match player left-joined with its profile.
type matchPlayerDetailRow struct {
	ID                     string         `db:"id"`
	MatchID                string         `db:"match_id"`
	MatchClubID            string         `db:"match_club_id"`
	PlayerProfileID        sql.NullString `db:"player_profile_id"`
	FirstName              sql.NullString `db:"first_name"`
	LastName               sql.NullString `db:"last_name"`
	JerseyNumber           int            `db:"jersey_number"`
	Position               string         `db:"position"`
	IsUserTeam             bool           `db:"is_user_team"`
	CreatedAt              time.Time      `db:"created_at"`
	ProfileFirstName       sql.NullString `db:"profile_first_name"`
	ProfileLastName        sql.NullString `db:"profile_last_name"`
	ProfileDateOfBirth     sql.NullTime   `db:"profile_date_of_birth"`
	ProfileCountry         sql.NullString `db:"profile_country"`
	ProfilePrimaryPosition sql.NullString `db:"profile_primary_position"`
	ProfileAvatar          sql.NullString `db:"profile_avatar"`
	ProfileCreatedAt       sql.NullTime   `db:"profile_created_at"`
	ProfileUpdatedAt       sql.NullTime   `db:"profile_updated_at"`
}

type matchResultTableModel struct {
	MatchID   string    `db:"match_id"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
