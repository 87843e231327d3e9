package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
)

type PlayerProfileRepository struct {
	store *Store
	inTx  bool
}

func (r *PlayerProfileRepository) List(ctx context.Context) ([]playerprofile.Profile, error) {
	return r.Search(ctx, playerprofile.Filter{})
}

func (r *PlayerProfileRepository) Search(_ context.Context, filter playerprofile.Filter) ([]playerprofile.Profile, error) {
	out := make([]playerprofile.Profile, 0)
	r.store.read(func(d *state) {
		for _, p := range d.profiles {
			if matchesFilter(p, filter) {
				out = append(out, p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesFilter(p playerprofile.Profile, f playerprofile.Filter) bool {
	if f.FirstName != "" && !containsFold(p.FirstName, f.FirstName) {
		return false
	}
	if f.LastName != "" && !containsFold(p.LastName, f.LastName) {
		return false
	}
	if f.Country != "" && !containsFold(p.Country, f.Country) {
		return false
	}
	if f.DateOfBirth != nil && !p.DateOfBirth.Equal(*f.DateOfBirth) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (r *PlayerProfileRepository) GetByID(_ context.Context, id string) (playerprofile.Profile, bool, error) {
	var (
		p  playerprofile.Profile
		ok bool
	)
	r.store.read(func(d *state) {
		p, ok = d.profiles[id]
	})
	return p, ok, nil
}

func (r *PlayerProfileRepository) GetByKey(_ context.Context, key playerprofile.Key) (playerprofile.Profile, bool, error) {
	var (
		p  playerprofile.Profile
		ok bool
	)
	r.store.read(func(d *state) {
		var id string
		if id, ok = d.profileKeys[keyOfProfile(key)]; ok {
			p = d.profiles[id]
		}
	})
	return p, ok, nil
}

func (r *PlayerProfileRepository) InsertOrGet(_ context.Context, p playerprofile.Profile) (playerprofile.Profile, bool, error) {
	var (
		out     playerprofile.Profile
		created bool
	)
	key := keyOfProfile(p.Key())
	err := r.store.write(r.inTx, func(d *state) error {
		if id, ok := d.profileKeys[key]; ok {
			out = d.profiles[id]
			return nil
		}
		d.profiles[p.ID] = p
		d.profileKeys[key] = p.ID
		out, created = p, true
		return nil
	})
	return out, created, err
}

func (r *PlayerProfileRepository) Update(_ context.Context, p playerprofile.Profile) (bool, error) {
	var updated bool
	key := keyOfProfile(p.Key())
	err := r.store.write(r.inTx, func(d *state) error {
		existing, ok := d.profiles[p.ID]
		if !ok {
			return nil
		}
		if id, taken := d.profileKeys[key]; taken && id != p.ID {
			return playerprofile.ErrDuplicate
		}
		p.CreatedAt = existing.CreatedAt
		delete(d.profileKeys, keyOfProfile(existing.Key()))
		d.profiles[p.ID] = p
		d.profileKeys[key] = p.ID
		updated = true
		return nil
	})
	return updated, err
}
