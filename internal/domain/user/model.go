package user

import (
	"fmt"
	"strings"
	"time"
)

// User is a registered account keyed by the identity provider subject.
type User struct {
	UID       string
	Name      string
	Email     string
	Phone     string
	PhotoURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) Validate() error {
	if strings.TrimSpace(u.UID) == "" {
		return fmt.Errorf("user uid is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email is required")
	}
	return nil
}

// Principal is the verified caller identity attached to a request.
type Principal struct {
	UID   string
	Email string
}
