package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-analysis/internal/domain/user"
)

type RegisterUserInput struct {
	UID      string
	Name     string
	Email    string
	Phone    string
	PhotoURL string
}

type UserService struct {
	users user.Repository
	now   func() time.Time
}

func NewUserService(users user.Repository) *UserService {
	return &UserService{
		users: users,
		now:   time.Now,
	}
}

// Register creates the account for the verified caller. The submitted uid
// must be the caller's own.
func (s *UserService) Register(ctx context.Context, caller user.Principal, input RegisterUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Register")
	defer span.End()

	input.UID = strings.TrimSpace(input.UID)
	if input.UID != caller.UID {
		return user.User{}, fmt.Errorf("%w: uid does not match the authenticated user", ErrForbidden)
	}

	now := s.now().UTC()
	u := user.User{
		UID:       input.UID,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:     strings.TrimSpace(input.Phone),
		PhotoURL:  strings.TrimSpace(input.PhotoURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrAlreadyRegistered) {
			return user.User{}, fmt.Errorf("%w: %s", ErrConflict, err.Error())
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.GetProfile")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return user.User{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}

	u, exists, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user not registered", ErrNotFound)
	}
	return u, nil
}
