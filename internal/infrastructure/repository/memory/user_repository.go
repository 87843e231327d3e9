package memory

import (
	"context"
	"strings"

	"github.com/riskibarqy/match-analysis/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(_ context.Context, u user.User) error {
	return r.store.write(false, func(d *state) error {
		if _, ok := d.users[u.UID]; ok {
			return user.ErrAlreadyRegistered
		}
		for _, existing := range d.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return user.ErrAlreadyRegistered
			}
		}
		d.users[u.UID] = u
		return nil
	})
}

func (r *UserRepository) GetByUID(_ context.Context, uid string) (user.User, bool, error) {
	var (
		u  user.User
		ok bool
	)
	r.store.read(func(d *state) {
		u, ok = d.users[uid]
	})
	return u, ok, nil
}
