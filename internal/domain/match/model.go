package match

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
)

// Status is the analysis lifecycle of a match. Any member may follow any
// other; backward moves are allowed.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}
}

func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses() {
		if raw == string(s) {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", raw)
}

// TeamRole tags which side of a match a club or player belongs to.
type TeamRole string

const (
	RoleYourTeam     TeamRole = "yourTeam"
	RoleOpponentTeam TeamRole = "opponentTeam"
)

func ParseTeamRole(raw string) (TeamRole, error) {
	switch TeamRole(raw) {
	case RoleYourTeam, RoleOpponentTeam:
		return TeamRole(raw), nil
	default:
		return "", fmt.Errorf("invalid team role %q", raw)
	}
}

// Match is the root of one analysis request.
type Match struct {
	ID               string
	OwnerUID         string
	VideoURL         string
	LineupImageURL   string
	CompetitiveLevel string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(m.OwnerUID) == "" {
		return fmt.Errorf("match owner is required")
	}
	if strings.TrimSpace(m.VideoURL) == "" {
		return fmt.Errorf("match video url is required")
	}
	if _, err := ParseStatus(string(m.Status)); err != nil {
		return err
	}
	return nil
}

// Club is one club's participation in a match. Name and country are copied
// from the canonical club at creation time.
type Club struct {
	ID          string
	MatchID     string
	ClubID      string
	Name        string
	Country     string
	JerseyColor string
	IsUserTeam  bool
	TeamRole    TeamRole
	CreatedAt   time.Time
}

// Player is one player's participation in a match. PlayerProfileID is empty
// when the player was not resolved to a canonical profile.
type Player struct {
	ID              string
	MatchID         string
	MatchClubID     string
	PlayerProfileID string
	FirstName       string
	LastName        string
	JerseyNumber    int
	Position        string
	IsUserTeam      bool
	CreatedAt       time.Time
}

// Result is written by the analysis worker and only read here.
type Result struct {
	MatchID   string
	Payload   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlayerDetail struct {
	Player
	Profile *playerprofile.Profile
}

// Detail is the full read projection of a match.
type Detail struct {
	Match   Match
	Clubs   []Club
	Players []PlayerDetail
	Result  *Result
}
