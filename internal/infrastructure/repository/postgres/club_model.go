package postgres

import (
	"database/sql"
	"time"
)

var clubColumns = []string{"id", "name", "country", "logo_url", "created_at", "updated_at"}

type clubTableModel struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Country   string         `db:"country"`
	LogoURL   sql.NullString `db:"logo_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type clubInsertModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Country   string    `db:"country"`
	LogoURL   *string   `db:"logo_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
