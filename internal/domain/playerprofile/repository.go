package playerprofile

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when an update collides with another profile's key.
var ErrDuplicate = errors.New("player profile already exists")

// Repository describes player profile persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Profile, error)
	Search(ctx context.Context, filter Filter) ([]Profile, error)
	GetByID(ctx context.Context, id string) (Profile, bool, error)
	GetByKey(ctx context.Context, key Key) (Profile, bool, error)
	// InsertOrGet has the same conflict contract as club.Repository.InsertOrGet.
	InsertOrGet(ctx context.Context, p Profile) (Profile, bool, error)
	Update(ctx context.Context, p Profile) (bool, error)
}
