package httpapi

import (
	"encoding/json"
	"time"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/domain/match"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
	"github.com/riskibarqy/match-analysis/internal/domain/user"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

type createMatchRequest struct {
	VideoURL         string                     `json:"videoUrl" validate:"required,url"`
	LineupImage      string                     `json:"lineUpImage" validate:"omitempty,url"`
	CompetitiveLevel string                     `json:"competitiveLevel" validate:"omitempty,max=100"`
	Clubs            []createMatchClubRequest   `json:"clubs" validate:"required,min=2,dive"`
	Players          []createMatchPlayerRequest `json:"players" validate:"omitempty,max=100,dive"`
}

type createMatchClubRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Country     string `json:"country" validate:"required,max=80"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
	JerseyColor string `json:"jerseyColor" validate:"omitempty,max=40"`
	TeamType    string `json:"teamType" validate:"required,oneof=yourTeam opponentTeam"`
}

type createMatchPlayerRequest struct {
	FirstName    string `json:"firstName" validate:"omitempty,max=80"`
	LastName     string `json:"lastName" validate:"omitempty,max=80"`
	JerseyNumber int    `json:"jerseyNumber" validate:"min=0,max=999"`
	DateOfBirth  string `json:"dateOfBirth" validate:"omitempty,max=10"`
	Position     string `json:"position" validate:"required,max=40"`
	Country      string `json:"country" validate:"omitempty,max=80"`
	TeamType     string `json:"teamType" validate:"required,oneof=yourTeam opponentTeam"`
}

func (req createMatchRequest) toInput(ownerUID string) usecase.CreateMatchInput {
	input := usecase.CreateMatchInput{
		OwnerUID:         ownerUID,
		VideoURL:         req.VideoURL,
		LineupImageURL:   req.LineupImage,
		CompetitiveLevel: req.CompetitiveLevel,
		Clubs:            make([]usecase.CreateMatchClubInput, 0, len(req.Clubs)),
		Players:          make([]usecase.CreateMatchPlayerInput, 0, len(req.Players)),
	}
	for _, c := range req.Clubs {
		input.Clubs = append(input.Clubs, usecase.CreateMatchClubInput{
			Name:        c.Name,
			Country:     c.Country,
			LogoURL:     c.LogoURL,
			JerseyColor: c.JerseyColor,
			TeamRole:    c.TeamType,
		})
	}
	for _, p := range req.Players {
		input.Players = append(input.Players, usecase.CreateMatchPlayerInput{
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			JerseyNumber: p.JerseyNumber,
			DateOfBirth:  p.DateOfBirth,
			Position:     p.Position,
			Country:      p.Country,
			TeamRole:     p.TeamType,
		})
	}
	return input
}

type updateMatchStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type registerUserRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
	UID      string `json:"UID" validate:"required,max=128"`
}

type clubRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Country string `json:"country" validate:"required,max=80"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

type updatePlayerProfileRequest struct {
	FirstName       *string `json:"firstName" validate:"omitempty,max=80"`
	LastName        *string `json:"lastName" validate:"omitempty,max=80"`
	DateOfBirth     *string `json:"dateOfBirth" validate:"omitempty,max=10"`
	Country         *string `json:"country" validate:"omitempty,max=80"`
	Avatar          *string `json:"avatar" validate:"omitempty,max=2048"`
	PrimaryPosition *string `json:"primaryPosition" validate:"omitempty,max=40"`
}

type matchSummaryDTO struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type matchDTO struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	VideoURL         string    `json:"videoUrl"`
	LineupImage      string    `json:"lineUpImage,omitempty"`
	CompetitiveLevel string    `json:"competitiveLevel,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type matchDetailDTO struct {
	matchDTO
	Clubs   []matchClubDTO   `json:"clubs"`
	Players []matchPlayerDTO `json:"players"`
	Result  *matchResultDTO  `json:"result"`
}

type matchClubDTO struct {
	ID          string `json:"id"`
	ClubID      string `json:"clubId"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	JerseyColor string `json:"jerseyColor,omitempty"`
	TeamType    string `json:"teamType"`
	IsUserTeam  bool   `json:"isUserTeam"`
}

type matchPlayerDTO struct {
	ID              string `json:"id"`
	MatchClubID     string `json:"matchClubId"`
	PlayerProfileID string `json:"playerProfileId,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	JerseyNumber    int    `json:"jerseyNumber"`
	Position        string `json:"position"`
	IsUserTeam      bool   `json:"isUserTeam"`
	DateOfBirth     string `json:"dateOfBirth"`
}

type matchResultDTO struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type lineupImageDTO struct {
	LineupImage string `json:"lineUpImage"`
}

type userDTO struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type clubDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type playerProfileDTO struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	DateOfBirth     string    `json:"dateOfBirth"`
	Country         string    `json:"country"`
	PrimaryPosition string    `json:"primaryPosition,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func matchSummaryToDTO(m match.Match) matchSummaryDTO {
	return matchSummaryDTO{ID: m.ID, Status: string(m.Status), CreatedAt: m.CreatedAt}
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:               m.ID,
		UserID:           m.OwnerUID,
		VideoURL:         m.VideoURL,
		LineupImage:      m.LineupImageURL,
		CompetitiveLevel: m.CompetitiveLevel,
		Status:           string(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func matchDetailToDTO(d match.Detail) matchDetailDTO {
	out := matchDetailDTO{
		matchDTO: matchToDTO(d.Match),
		Clubs:    make([]matchClubDTO, 0, len(d.Clubs)),
		Players:  make([]matchPlayerDTO, 0, len(d.Players)),
	}
	for _, c := range d.Clubs {
		out.Clubs = append(out.Clubs, matchClubDTO{
			ID:          c.ID,
			ClubID:      c.ClubID,
			Name:        c.Name,
			Country:     c.Country,
			JerseyColor: c.JerseyColor,
			TeamType:    string(c.TeamRole),
			IsUserTeam:  c.IsUserTeam,
		})
	}
	for _, p := range d.Players {
		var dob *time.Time
		if p.Profile != nil {
			dob = &p.Profile.DateOfBirth
		}
		out.Players = append(out.Players, matchPlayerDTO{
			ID:              p.ID,
			MatchClubID:     p.MatchClubID,
			PlayerProfileID: p.PlayerProfileID,
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			JerseyNumber:    p.JerseyNumber,
			Position:        p.Position,
			IsUserTeam:      p.IsUserTeam,
			DateOfBirth:     playerprofile.DisplayDate(dob),
		})
	}
	if d.Result != nil {
		out.Result = &matchResultDTO{
			Data:      d.Result.Payload,
			CreatedAt: d.Result.CreatedAt,
			UpdatedAt: d.Result.UpdatedAt,
		}
	}
	return out
}

func userToDTO(u user.User) userDTO {
	return userDTO{
		UID:       u.UID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	}
}

func clubToDTO(c club.Club) clubDTO {
	return clubDTO{
		ID:        c.ID,
		Name:      c.Name,
		Country:   c.Country,
		LogoURL:   c.LogoURL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func playerProfileToDTO(p playerprofile.Profile) playerProfileDTO {
	return playerProfileDTO{
		ID:              p.ID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		DateOfBirth:     playerprofile.DisplayDate(&p.DateOfBirth),
		Country:         p.Country,
		PrimaryPosition: p.PrimaryPosition,
		Avatar:          p.Avatar,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
