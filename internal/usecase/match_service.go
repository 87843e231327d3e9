package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/domain/match"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
	"github.com/riskibarqy/match-analysis/internal/domain/user"
	"github.com/riskibarqy/match-analysis/internal/platform/id"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
	"github.com/riskibarqy/match-analysis/internal/platform/metrics"
)

type CreateMatchClubInput struct {
	Name        string
	Country     string
	LogoURL     string
	JerseyColor string
	TeamRole    string
}

type CreateMatchPlayerInput struct {
	FirstName    string
	LastName     string
	JerseyNumber int
	DateOfBirth  string
	Position     string
	Country      string
	TeamRole     string
}

type CreateMatchInput struct {
	OwnerUID         string
	VideoURL         string
	LineupImageURL   string
	CompetitiveLevel string
	Clubs            []CreateMatchClubInput
	Players          []CreateMatchPlayerInput
}

type AttachLineupImageInput struct {
	CallerUID   string
	MatchID     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageUploader stores lineup images and returns their public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

type PageRequest struct {
	Page  int
	Limit int
}

type MatchListLimits struct {
	DefaultLimit int
	MaxLimit     int
}

type MatchService struct {
	users    user.Repository
	matches  match.Repository
	tx       match.Transactor
	ids      id.Generator
	uploader ImageUploader
	limits   MatchListLimits
	logger   *logging.Logger
	now      func() time.Time
}

func NewMatchService(
	users user.Repository,
	matches match.Repository,
	tx match.Transactor,
	ids id.Generator,
	uploader ImageUploader,
	limits MatchListLimits,
	logger *logging.Logger,
) *MatchService {
	if limits.MaxLimit < 1 {
		limits.MaxLimit = 100
	}
	if limits.DefaultLimit < 1 || limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = min(20, limits.MaxLimit)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &MatchService{
		users:    users,
		matches:  matches,
		tx:       tx,
		ids:      ids,
		uploader: uploader,
		limits:   limits,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateMatch registers a match with its clubs and rosters in one
// transaction, reusing canonical clubs and player profiles where they exist.
func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatch")
	defer span.End()

	input = normalizeCreateMatchInput(input)
	if err := validateCreateMatchInput(input); err != nil {
		return match.Match{}, err
	}

	if _, exists, err := s.users.GetByUID(ctx, input.OwnerUID); err != nil {
		return match.Match{}, fmt.Errorf("get owner: %w", err)
	} else if !exists {
		return match.Match{}, fmt.Errorf("%w: user not registered", ErrInvalidInput)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	created := match.Match{
		ID:               matchID,
		OwnerUID:         input.OwnerUID,
		VideoURL:         input.VideoURL,
		LineupImageURL:   input.LineupImageURL,
		CompetitiveLevel: input.CompetitiveLevel,
		Status:           match.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := created.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, uow match.UnitOfWork) error {
		return s.assemble(ctx, uow, created, input)
	})
	if err != nil {
		metrics.MatchAssemblyFailures.Inc()
		return match.Match{}, fmt.Errorf("assemble match: %w", err)
	}

	metrics.MatchesCreated.Inc()
	s.logger.InfoContext(ctx, "match registered",
		"match_id", created.ID,
		"owner_uid", created.OwnerUID,
		"clubs", len(input.Clubs),
		"players", len(input.Players),
	)
	return created, nil
}

func (s *MatchService) assemble(ctx context.Context, uow match.UnitOfWork, m match.Match, input CreateMatchInput) error {
	if err := uow.Matches().Create(ctx, m); err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	matchClubByRole := make(map[match.TeamRole]string, len(input.Clubs))
	for _, in := range input.Clubs {
		role := match.TeamRole(in.TeamRole)
		canonical, err := s.resolveClub(ctx, uow.Clubs(), in)
		if err != nil {
			return err
		}

		matchClubID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate match club id: %w", err)
		}
		mc := match.Club{
			ID:          matchClubID,
			MatchID:     m.ID,
			ClubID:      canonical.ID,
			Name:        canonical.Name,
			Country:     canonical.Country,
			JerseyColor: in.JerseyColor,
			IsUserTeam:  role == match.RoleYourTeam,
			TeamRole:    role,
			CreatedAt:   m.CreatedAt,
		}
		if err := uow.Matches().CreateClub(ctx, mc); err != nil {
			return fmt.Errorf("create match club role=%s: %w", role, err)
		}
		matchClubByRole[role] = mc.ID
	}

	for i, in := range input.Players {
		role := match.TeamRole(in.TeamRole)
		matchClubID, ok := matchClubByRole[role]
		if !ok {
			// Guarded by validateCreateMatchInput.
			return fmt.Errorf("%w: players[%d] team role %q has no club", ErrInvalidInput, i, role)
		}

		profileID, err := s.resolvePlayerProfile(ctx, uow.PlayerProfiles(), in)
		if err != nil {
			return fmt.Errorf("players[%d]: %w", i, err)
		}

		playerID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate match player id: %w", err)
		}
		mp := match.Player{
			ID:              playerID,
			MatchID:         m.ID,
			MatchClubID:     matchClubID,
			PlayerProfileID: profileID,
			FirstName:       in.FirstName,
			LastName:        in.LastName,
			JerseyNumber:    in.JerseyNumber,
			Position:        in.Position,
			IsUserTeam:      role == match.RoleYourTeam,
			CreatedAt:       m.CreatedAt,
		}
		if err := uow.Matches().CreatePlayer(ctx, mp); err != nil {
			return fmt.Errorf("create match player players[%d]: %w", i, err)
		}
	}

	return nil
}

func (s *MatchService) resolveClub(ctx context.Context, repo club.Repository, in CreateMatchClubInput) (club.Club, error) {
	candidateID, err := s.ids.NewID()
	if err != nil {
		return club.Club{}, fmt.Errorf("generate club id: %w", err)
	}

	now := s.now().UTC()
	resolved, created, err := repo.InsertOrGet(ctx, club.Club{
		ID:        candidateID,
		Name:      in.Name,
		Country:   in.Country,
		LogoURL:   in.LogoURL,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return club.Club{}, fmt.Errorf("resolve club name=%s country=%s: %w", in.Name, in.Country, err)
	}
	metrics.ClubResolutions.WithLabelValues(resolutionOutcome(created)).Inc()
	return resolved, nil
}

// resolvePlayerProfile returns the canonical profile id for a roster entry, or
// "" when the entry does not qualify for a profile.
func (s *MatchService) resolvePlayerProfile(ctx context.Context, repo playerprofile.Repository, in CreateMatchPlayerInput) (string, error) {
	key, ok := profileKeyFor(in)
	if !ok {
		metrics.ProfileResolutions.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return "", nil
	}

	candidateID, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate player profile id: %w", err)
	}

	now := s.now().UTC()
	resolved, created, err := repo.InsertOrGet(ctx, playerprofile.Profile{
		ID:              candidateID,
		FirstName:       key.FirstName,
		LastName:        key.LastName,
		DateOfBirth:     key.DateOfBirth,
		Country:         key.Country,
		PrimaryPosition: in.Position,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return "", fmt.Errorf("resolve player profile: %w", err)
	}
	metrics.ProfileResolutions.WithLabelValues(resolutionOutcome(created)).Inc()
	return resolved.ID, nil
}

// profileKeyFor applies the resolution policy. The submitting team is always
// resolved when its identity is usable. Opponents only when fully described.
func profileKeyFor(in CreateMatchPlayerInput) (playerprofile.Key, bool) {
	if match.TeamRole(in.TeamRole) == match.RoleOpponentTeam {
		if in.FirstName == "" || in.LastName == "" || in.DateOfBirth == "" || in.Position == "" || in.Country == "" {
			return playerprofile.Key{}, false
		}
	}
	if in.FirstName == "" || in.LastName == "" || in.Country == "" {
		return playerprofile.Key{}, false
	}

	dob, err := playerprofile.ParseDate(in.DateOfBirth)
	if err != nil {
		return playerprofile.Key{}, false
	}

	return playerprofile.Key{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: dob,
		Country:     in.Country,
	}, true
}

func resolutionOutcome(created bool) string {
	if created {
		return metrics.OutcomeCreated
	}
	return metrics.OutcomeExisting
}

func (s *MatchService) ListMyMatches(ctx context.Context, ownerUID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMyMatches")
	defer span.End()

	ownerUID = strings.TrimSpace(ownerUID)
	if ownerUID == "" {
		return nil, fmt.Errorf("%w: owner uid is required", ErrInvalidInput)
	}

	items, err := s.matches.ListByOwner(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("list matches by owner: %w", err)
	}
	return items, nil
}

// ListMatches pages through all matches newest first. A zero page or limit
// takes the default and limit is capped at the configured maximum.
func (s *MatchService) ListMatches(ctx context.Context, req PageRequest) ([]match.Match, PageRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches")
	defer span.End()

	page, err := s.normalizePage(req)
	if err != nil {
		return nil, PageRequest{}, err
	}

	// An offset that does not fit in an int is past any stored row.
	if page.Page-1 > math.MaxInt/page.Limit {
		return []match.Match{}, page, nil
	}
	offset := (page.Page - 1) * page.Limit
	items, err := s.matches.List(ctx, offset, page.Limit)
	if err != nil {
		return nil, PageRequest{}, fmt.Errorf("list matches: %w", err)
	}
	return items, page, nil
}

func (s *MatchService) normalizePage(req PageRequest) (PageRequest, error) {
	verr := &ValidationError{}
	if req.Page < 0 {
		verr.Add("page", "page must be a positive integer")
	}
	if req.Limit < 0 {
		verr.Add("limit", "limit must be a positive integer")
	}
	if err := verr.errOrNil(); err != nil {
		return PageRequest{}, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = s.limits.DefaultLimit
	}
	if req.Limit > s.limits.MaxLimit {
		req.Limit = s.limits.MaxLimit
	}
	return req, nil
}

func (s *MatchService) GetMatchDetail(ctx context.Context, matchID string) (match.Detail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatchDetail")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Detail{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	detail, exists, err := s.matches.GetDetail(ctx, matchID)
	if err != nil {
		return match.Detail{}, fmt.Errorf("get match detail: %w", err)
	}
	if !exists {
		return match.Detail{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return detail, nil
}

// UpdateMatchStatus validates status before touching storage, so an unknown
// value never mutates the match.
func (s *MatchService) UpdateMatchStatus(ctx context.Context, matchID, rawStatus string) (match.Status, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateMatchStatus")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	status, err := match.ParseStatus(strings.TrimSpace(rawStatus))
	if err != nil {
		verr := &ValidationError{}
		verr.Add("status", fmt.Sprintf("status must be one of %s", joinStatuses()))
		return "", verr
	}

	updated, err := s.matches.UpdateStatus(ctx, matchID, status)
	if err != nil {
		return "", fmt.Errorf("update match status: %w", err)
	}
	if !updated {
		return "", fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	s.logger.InfoContext(ctx, "match status updated", "match_id", matchID, "status", string(status))
	return status, nil
}

// AttachLineupImage uploads a lineup picture for a match the caller owns and
// records its public URL.
func (s *MatchService) AttachLineupImage(ctx context.Context, input AttachLineupImageInput) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.AttachLineupImage")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.MatchID == "" {
		return "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		verr := &ValidationError{}
		verr.Add("file", "file must be an image")
		return "", verr
	}
	if s.uploader == nil {
		return "", fmt.Errorf("%w: image storage is not configured", ErrDependencyUnavailable)
	}

	m, exists, err := s.matches.GetByID(ctx, input.MatchID)
	if err != nil {
		return "", fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}
	if m.OwnerUID != input.CallerUID {
		return "", fmt.Errorf("%w: match belongs to another user", ErrForbidden)
	}

	objectID, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate object id: %w", err)
	}
	key := "matches/" + m.ID + "/lineup-" + objectID + strings.ToLower(path.Ext(input.FileName))

	url, err := s.uploader.Upload(ctx, key, input.ContentType, input.Body, input.Size)
	if err != nil {
		return "", fmt.Errorf("%w: upload lineup image: %v", ErrDependencyUnavailable, err)
	}

	updated, err := s.matches.UpdateLineupImage(ctx, m.ID, url)
	if err == nil && !updated {
		err = fmt.Errorf("%w: match=%s", ErrNotFound, m.ID)
	}
	if err != nil {
		if delErr := s.uploader.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.WarnContext(ctx, "cleanup orphaned lineup image failed", "key", key, "error", delErr)
		}
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("update lineup image: %w", err)
	}

	return url, nil
}

func joinStatuses() string {
	statuses := match.Statuses()
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, string(st))
	}
	return strings.Join(out, ", ")
}

func normalizeCreateMatchInput(input CreateMatchInput) CreateMatchInput {
	input.OwnerUID = strings.TrimSpace(input.OwnerUID)
	input.VideoURL = strings.TrimSpace(input.VideoURL)
	input.LineupImageURL = strings.TrimSpace(input.LineupImageURL)
	input.CompetitiveLevel = strings.TrimSpace(input.CompetitiveLevel)

	clubs := make([]CreateMatchClubInput, len(input.Clubs))
	for i, c := range input.Clubs {
		clubs[i] = CreateMatchClubInput{
			Name:        strings.TrimSpace(c.Name),
			Country:     strings.TrimSpace(c.Country),
			LogoURL:     strings.TrimSpace(c.LogoURL),
			JerseyColor: strings.TrimSpace(c.JerseyColor),
			TeamRole:    strings.TrimSpace(c.TeamRole),
		}
	}
	input.Clubs = clubs

	players := make([]CreateMatchPlayerInput, len(input.Players))
	for i, p := range input.Players {
		players[i] = CreateMatchPlayerInput{
			FirstName:    strings.TrimSpace(p.FirstName),
			LastName:     strings.TrimSpace(p.LastName),
			JerseyNumber: p.JerseyNumber,
			DateOfBirth:  strings.TrimSpace(p.DateOfBirth),
			Position:     strings.TrimSpace(p.Position),
			Country:      strings.TrimSpace(p.Country),
			TeamRole:     strings.TrimSpace(p.TeamRole),
		}
	}
	input.Players = players
	return input
}

// validateCreateMatchInput rejects anything that would otherwise fail midway
// through assembly, so nothing is written for a request that cannot succeed.
func validateCreateMatchInput(input CreateMatchInput) error {
	verr := &ValidationError{}
	if input.OwnerUID == "" {
		verr.Add("uid", "owner uid is required")
	}
	if input.VideoURL == "" {
		verr.Add("videoUrl", "video url is required")
	}
	if len(input.Clubs) < 2 {
		verr.Add("clubs", "at least two clubs are required")
	}

	roles := make(map[match.TeamRole]struct{}, len(input.Clubs))
	for i, c := range input.Clubs {
		if c.Name == "" {
			verr.Add(fmt.Sprintf("clubs[%d].name", i), "club name is required")
		}
		if c.Country == "" {
			verr.Add(fmt.Sprintf("clubs[%d].country", i), "club country is required")
		}
		role, err := match.ParseTeamRole(c.TeamRole)
		if err != nil {
			verr.Add(fmt.Sprintf("clubs[%d].teamType", i), "team type must be yourTeam or opponentTeam")
			continue
		}
		if _, dup := roles[role]; dup {
			verr.Add(fmt.Sprintf("clubs[%d].teamType", i), fmt.Sprintf("team type %s is used by more than one club", role))
			continue
		}
		roles[role] = struct{}{}
	}

	for i, p := range input.Players {
		if p.JerseyNumber < 0 {
			verr.Add(fmt.Sprintf("players[%d].jerseyNumber", i), "jersey number must be >= 0")
		}
		if p.Position == "" {
			verr.Add(fmt.Sprintf("players[%d].position", i), "position is required")
		}
		role, err := match.ParseTeamRole(p.TeamRole)
		if err != nil {
			verr.Add(fmt.Sprintf("players[%d].teamType", i), "team type must be yourTeam or opponentTeam")
			continue
		}
		if _, ok := roles[role]; !ok {
			verr.Add(fmt.Sprintf("players[%d].teamType", i), fmt.Sprintf("no club submitted for team type %s", role))
		}
	}

	return verr.errOrNil()
}
