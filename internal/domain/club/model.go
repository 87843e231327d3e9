package club

import (
	"fmt"
	"strings"
	"time"
)

// Club is a canonical real-world club shared across matches.
type Club struct {
	ID        string
	Name      string
	Country   string
	LogoURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key is the natural identity of a club.
type Key struct {
	Name    string
	Country string
}

func (c Club) Key() Key {
	return Key{Name: c.Name, Country: c.Country}
}

func (c Club) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("club id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("club name is required")
	}
	if strings.TrimSpace(c.Country) == "" {
		return fmt.Errorf("club country is required")
	}
	return nil
}
