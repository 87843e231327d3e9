package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/domain/match"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
)

// Store groups the repositories over one pool and runs transactions.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.db)
}

func (s *Store) Clubs() *ClubRepository {
	return NewClubRepository(s.db)
}

func (s *Store) PlayerProfiles() *PlayerProfileRepository {
	return NewPlayerProfileRepository(s.db)
}

func (s *Store) Matches() *MatchRepository {
	return NewMatchRepository(s.db)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, uow match.UnitOfWork) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, unitOfWork{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type unitOfWork struct {
	tx *sqlx.Tx
}

func (u unitOfWork) Clubs() club.Repository {
	return &ClubRepository{db: u.tx, inTx: true}
}

func (u unitOfWork) PlayerProfiles() playerprofile.Repository {
	return &PlayerProfileRepository{db: u.tx, inTx: true}
}

func (u unitOfWork) Matches() match.Repository {
	return &MatchRepository{db: u.tx, inTx: true}
}
