package match

import (
	"context"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, m Match) error
	CreateClub(ctx context.Context, c Club) error
	CreatePlayer(ctx context.Context, p Player) error
	GetByID(ctx context.Context, id string) (Match, bool, error)
	GetDetail(ctx context.Context, id string) (Detail, bool, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]Match, error)
	List(ctx context.Context, offset, limit int) ([]Match, error)
	UpdateStatus(ctx context.Context, id string, status Status) (bool, error)
	UpdateLineupImage(ctx context.Context, id, url string) (bool, error)
}

// UnitOfWork exposes repositories bound to one transaction.
type UnitOfWork interface {
	Clubs() club.Repository
	PlayerProfiles() playerprofile.Repository
	Matches() Repository
}

// Transactor runs fn in a transaction that commits only when fn returns nil.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
