package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
)

type ClubRepository struct {
	store *Store
	inTx  bool
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	var out []club.Club
	r.store.read(func(d *state) {
		out = make([]club.Club, 0, len(d.clubs))
		for _, c := range d.clubs {
			out = append(out, c)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ClubRepository) GetByID(_ context.Context, id string) (club.Club, bool, error) {
	var (
		c  club.Club
		ok bool
	)
	r.store.read(func(d *state) {
		c, ok = d.clubs[id]
	})
	return c, ok, nil
}

func (r *ClubRepository) GetByKey(_ context.Context, key club.Key) (club.Club, bool, error) {
	var (
		c  club.Club
		ok bool
	)
	r.store.read(func(d *state) {
		var id string
		if id, ok = d.clubKeys[key]; ok {
			c = d.clubs[id]
		}
	})
	return c, ok, nil
}

func (r *ClubRepository) InsertOrGet(_ context.Context, c club.Club) (club.Club, bool, error) {
	var (
		out     club.Club
		created bool
	)
	err := r.store.write(r.inTx, func(d *state) error {
		if id, ok := d.clubKeys[c.Key()]; ok {
			out = d.clubs[id]
			return nil
		}
		d.clubs[c.ID] = c
		d.clubKeys[c.Key()] = c.ID
		out, created = c, true
		return nil
	})
	return out, created, err
}

func (r *ClubRepository) Create(_ context.Context, c club.Club) error {
	return r.store.write(r.inTx, func(d *state) error {
		if _, ok := d.clubKeys[c.Key()]; ok {
			return club.ErrDuplicate
		}
		d.clubs[c.ID] = c
		d.clubKeys[c.Key()] = c.ID
		return nil
	})
}

func (r *ClubRepository) Update(_ context.Context, c club.Club) (bool, error) {
	var updated bool
	err := r.store.write(r.inTx, func(d *state) error {
		existing, ok := d.clubs[c.ID]
		if !ok {
			return nil
		}
		if id, taken := d.clubKeys[c.Key()]; taken && id != c.ID {
			return club.ErrDuplicate
		}
		c.CreatedAt = existing.CreatedAt
		delete(d.clubKeys, existing.Key())
		d.clubs[c.ID] = c
		d.clubKeys[c.Key()] = c.ID
		updated = true
		return nil
	})
	return updated, err
}

func (r *ClubRepository) Delete(_ context.Context, id string) (bool, error) {
	var deleted bool
	err := r.store.write(r.inTx, func(d *state) error {
		existing, ok := d.clubs[id]
		if !ok {
			return nil
		}
		for _, mc := range d.matchClubs {
			if mc.ClubID == id {
				return club.ErrInUse
			}
		}
		delete(d.clubs, id)
		delete(d.clubKeys, existing.Key())
		deleted = true
		return nil
	})
	return deleted, err
}
