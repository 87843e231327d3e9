package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/platform/id"
)

type ClubInput struct {
	Name    string
	Country string
	LogoURL string
}

type ClubService struct {
	clubs club.Repository
	ids   id.Generator
	now   func() time.Time
}

func NewClubService(clubs club.Repository, ids id.Generator) *ClubService {
	return &ClubService{
		clubs: clubs,
		ids:   ids,
		now:   time.Now,
	}
}

func (s *ClubService) ListClubs(ctx context.Context) ([]club.Club, error) {
	items, err := s.clubs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	return items, nil
}

func (s *ClubService) GetClub(ctx context.Context, clubID string) (club.Club, error) {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return club.Club{}, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	item, exists, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return club.Club{}, fmt.Errorf("get club: %w", err)
	}
	if !exists {
		return club.Club{}, fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
	}
	return item, nil
}

func (s *ClubService) CreateClub(ctx context.Context, input ClubInput) (club.Club, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClubService.CreateClub")
	defer span.End()

	clubID, err := s.ids.NewID()
	if err != nil {
		return club.Club{}, fmt.Errorf("generate club id: %w", err)
	}

	now := s.now().UTC()
	item := club.Club{
		ID:        clubID,
		Name:      strings.TrimSpace(input.Name),
		Country:   strings.TrimSpace(input.Country),
		LogoURL:   strings.TrimSpace(input.LogoURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return club.Club{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	if err := s.clubs.Create(ctx, item); err != nil {
		if errors.Is(err, club.ErrDuplicate) {
			return club.Club{}, fmt.Errorf("%w: club %s (%s) already exists", ErrConflict, item.Name, item.Country)
		}
		return club.Club{}, fmt.Errorf("create club: %w", err)
	}
	return item, nil
}

func (s *ClubService) UpdateClub(ctx context.Context, clubID string, input ClubInput) (club.Club, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClubService.UpdateClub")
	defer span.End()

	existing, err := s.GetClub(ctx, clubID)
	if err != nil {
		return club.Club{}, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Country = strings.TrimSpace(input.Country)
	existing.LogoURL = strings.TrimSpace(input.LogoURL)
	existing.UpdatedAt = s.now().UTC()
	if err := existing.Validate(); err != nil {
		return club.Club{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	updated, err := s.clubs.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, club.ErrDuplicate) {
			return club.Club{}, fmt.Errorf("%w: club %s (%s) already exists", ErrConflict, existing.Name, existing.Country)
		}
		return club.Club{}, fmt.Errorf("update club: %w", err)
	}
	if !updated {
		return club.Club{}, fmt.Errorf("%w: club=%s", ErrNotFound, existing.ID)
	}
	return existing, nil
}

func (s *ClubService) DeleteClub(ctx context.Context, clubID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClubService.DeleteClub")
	defer span.End()

	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	deleted, err := s.clubs.Delete(ctx, clubID)
	if err != nil {
		if errors.Is(err, club.ErrInUse) {
			return fmt.Errorf("%w: club is referenced by existing matches", ErrConflict)
		}
		return fmt.Errorf("delete club: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
	}
	return nil
}
