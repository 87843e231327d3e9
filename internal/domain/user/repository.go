package user

import (
	"context"
	"errors"
)

// ErrAlreadyRegistered is returned when the uid or email is already taken.
var ErrAlreadyRegistered = errors.New("user already registered")

// Repository describes user persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByUID(ctx context.Context, uid string) (User, bool, error)
}
