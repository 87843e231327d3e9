package club

import (
	"context"
	"errors"
)

var (
	// ErrDuplicate is returned by explicit writes that collide on (name, country).
	ErrDuplicate = errors.New("club already exists")
	// ErrInUse is returned when match rows still reference the club.
	ErrInUse = errors.New("club is referenced by matches")
)

// Repository describes club persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Club, error)
	GetByID(ctx context.Context, id string) (Club, bool, error)
	GetByKey(ctx context.Context, key Key) (Club, bool, error)
	// InsertOrGet returns the stored club for c.Key(), inserting c when none
	// exists. A concurrent insert of the same key resolves to the winner's row.
	InsertOrGet(ctx context.Context, c Club) (Club, bool, error)
	Create(ctx context.Context, c Club) error
	Update(ctx context.Context, c Club) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
