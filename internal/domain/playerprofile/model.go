package playerprofile

import (
	"fmt"
	"strings"
	"time"
)

// Profile is a canonical real person shared across matches and clubs.
type Profile struct {
	ID              string
	FirstName       string
	LastName        string
	DateOfBirth     time.Time
	Country         string
	PrimaryPosition string
	Avatar          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Key is the natural identity of a player profile.
type Key struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Country     string
}

func (p Profile) Key() Key {
	return Key{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Country:     p.Country,
	}
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player profile id is required")
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("player first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("player last name is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("player date of birth is required")
	}
	if strings.TrimSpace(p.Country) == "" {
		return fmt.Errorf("player country is required")
	}
	return nil
}

// Filter narrows a profile search. Empty fields are ignored.
type Filter struct {
	FirstName   string
	LastName    string
	Country     string
	DateOfBirth *time.Time
}
