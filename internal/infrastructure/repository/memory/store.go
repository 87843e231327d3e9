package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/domain/match"
	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
	"github.com/riskibarqy/match-analysis/internal/domain/user"
)

type profileKey struct {
	firstName   string
	lastName    string
	dateOfBirth string
	country     string
}

func keyOfProfile(k playerprofile.Key) profileKey {
	return profileKey{
		firstName:   k.FirstName,
		lastName:    k.LastName,
		dateOfBirth: k.DateOfBirth.UTC().Format("2006-01-02"),
		country:     k.Country,
	}
}

type state struct {
	users        map[string]user.User
	clubs        map[string]club.Club
	clubKeys     map[club.Key]string
	profiles     map[string]playerprofile.Profile
	profileKeys  map[profileKey]string
	matches      map[string]match.Match
	matchClubs   map[string]match.Club
	matchPlayers map[string]match.Player
	results      map[string]match.Result
}

func newState() state {
	return state{
		users:        make(map[string]user.User),
		clubs:        make(map[string]club.Club),
		clubKeys:     make(map[club.Key]string),
		profiles:     make(map[string]playerprofile.Profile),
		profileKeys:  make(map[profileKey]string),
		matches:      make(map[string]match.Match),
		matchClubs:   make(map[string]match.Club),
		matchPlayers: make(map[string]match.Player),
		results:      make(map[string]match.Result),
	}
}

func (s state) clone() state {
	return state{
		users:        maps.Clone(s.users),
		clubs:        maps.Clone(s.clubs),
		clubKeys:     maps.Clone(s.clubKeys),
		profiles:     maps.Clone(s.profiles),
		profileKeys:  maps.Clone(s.profileKeys),
		matches:      maps.Clone(s.matches),
		matchClubs:   maps.Clone(s.matchClubs),
		matchPlayers: maps.Clone(s.matchPlayers),
		results:      maps.Clone(s.results),
	}
}

// Store is an in-process implementation of every repository with the same
// uniqueness and referential rules as the Postgres schema. Transactions are
// serialized and rolled back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Clubs() *ClubRepository {
	return &ClubRepository{store: s}
}

func (s *Store) PlayerProfiles() *PlayerProfileRepository {
	return &PlayerProfileRepository{store: s}
}

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{store: s}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, uow match.UnitOfWork) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	uow := unitOfWork{
		clubs:    &ClubRepository{store: s, inTx: true},
		profiles: &PlayerProfileRepository{store: s, inTx: true},
		matches:  &MatchRepository{store: s, inTx: true},
	}
	if err := fn(ctx, uow); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// write applies fn under the data lock. Writes outside a transaction also
// wait for any running transaction so a rollback cannot discard them.
func (s *Store) write(inTx bool, fn func(d *state) error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

type unitOfWork struct {
	clubs    *ClubRepository
	profiles *PlayerProfileRepository
	matches  *MatchRepository
}

func (u unitOfWork) Clubs() club.Repository                   { return u.clubs }
func (u unitOfWork) PlayerProfiles() playerprofile.Repository { return u.profiles }
func (u unitOfWork) Matches() match.Repository                { return u.matches }
