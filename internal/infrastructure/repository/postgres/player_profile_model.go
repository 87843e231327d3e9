package postgres

import (
	"database/sql"
	"time"
)

var playerProfileColumns = []string{
	"id",
	"first_name",
	"last_name",
	"date_of_birth",
	"country",
	"primary_position",
	"avatar",
	"created_at",
	"updated_at",
}

type playerProfileTableModel struct {
	ID              string         `db:"id"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	DateOfBirth     time.Time      `db:"date_of_birth"`
	Country         string         `db:"country"`
	PrimaryPosition sql.NullString `db:"primary_position"`
	Avatar          sql.NullString `db:"avatar"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type playerProfileInsertModel struct {
	ID              string    `db:"id"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	DateOfBirth     time.Time `db:"date_of_birth"`
	Country         string    `db:"country"`
	PrimaryPosition *string   `db:"primary_position"`
	Avatar          *string   `db:"avatar"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
