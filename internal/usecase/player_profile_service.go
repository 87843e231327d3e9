package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
)

type SearchPlayerProfilesInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Country     string
}

// UpdatePlayerProfileInput leaves nil fields untouched.
type UpdatePlayerProfileInput struct {
	FirstName       *string
	LastName        *string
	DateOfBirth     *string
	Country         *string
	Avatar          *string
	PrimaryPosition *string
}

type PlayerProfileService struct {
	profiles playerprofile.Repository
	now      func() time.Time
}

func NewPlayerProfileService(profiles playerprofile.Repository) *PlayerProfileService {
	return &PlayerProfileService{
		profiles: profiles,
		now:      time.Now,
	}
}

func (s *PlayerProfileService) ListProfiles(ctx context.Context) ([]playerprofile.Profile, error) {
	items, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list player profiles: %w", err)
	}
	return items, nil
}

// SearchProfiles matches names and country by case-insensitive substring and
// date of birth exactly. A date that does not parse is ignored.
func (s *PlayerProfileService) SearchProfiles(ctx context.Context, input SearchPlayerProfilesInput) ([]playerprofile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerProfileService.SearchProfiles")
	defer span.End()

	filter := playerprofile.Filter{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Country:   strings.TrimSpace(input.Country),
	}
	if dob, err := playerprofile.ParseDate(input.DateOfBirth); err == nil {
		filter.DateOfBirth = &dob
	}

	items, err := s.profiles.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search player profiles: %w", err)
	}
	return items, nil
}

func (s *PlayerProfileService) GetProfile(ctx context.Context, profileID string) (playerprofile.Profile, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return playerprofile.Profile{}, fmt.Errorf("%w: player profile id is required", ErrInvalidInput)
	}

	item, exists, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return playerprofile.Profile{}, fmt.Errorf("get player profile: %w", err)
	}
	if !exists {
		return playerprofile.Profile{}, fmt.Errorf("%w: player profile=%s", ErrNotFound, profileID)
	}
	return item, nil
}

func (s *PlayerProfileService) UpdateProfile(ctx context.Context, profileID string, input UpdatePlayerProfileInput) (playerprofile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerProfileService.UpdateProfile")
	defer span.End()

	item, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return playerprofile.Profile{}, err
	}

	verr := &ValidationError{}
	if input.FirstName != nil {
		item.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		item.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Country != nil {
		item.Country = strings.TrimSpace(*input.Country)
	}
	if input.Avatar != nil {
		item.Avatar = strings.TrimSpace(*input.Avatar)
	}
	if input.PrimaryPosition != nil {
		item.PrimaryPosition = strings.TrimSpace(*input.PrimaryPosition)
	}
	if input.DateOfBirth != nil {
		dob, err := playerprofile.ParseDate(*input.DateOfBirth)
		if err != nil {
			verr.Add("dateOfBirth", "invalid date format, expected DD-MM-YYYY")
		} else {
			item.DateOfBirth = dob
		}
	}
	if err := verr.errOrNil(); err != nil {
		return playerprofile.Profile{}, err
	}
	if err := item.Validate(); err != nil {
		return playerprofile.Profile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	item.UpdatedAt = s.now().UTC()
	updated, err := s.profiles.Update(ctx, item)
	if err != nil {
		if errors.Is(err, playerprofile.ErrDuplicate) {
			return playerprofile.Profile{}, fmt.Errorf("%w: another profile has the same name, date of birth and country", ErrConflict)
		}
		return playerprofile.Profile{}, fmt.Errorf("update player profile: %w", err)
	}
	if !updated {
		return playerprofile.Profile{}, fmt.Errorf("%w: player profile=%s", ErrNotFound, item.ID)
	}
	return item, nil
}
