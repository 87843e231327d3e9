package cache

import (
	"context"

	"github.com/riskibarqy/match-analysis/internal/domain/club"
	basecache "github.com/riskibarqy/match-analysis/internal/platform/cache"
)

const (
	clubByIDPrefix = "club:id:"
	clubListKey    = "club:list"
)

// ClubRepository caches catalog reads in front of another club.Repository.
// Writes through this repository invalidate every cached club entry. Rows
// inserted by match registration bypass it and show up in List once the
// ttl expires.
type ClubRepository struct {
	next  club.Repository
	byID  *basecache.Store[club.Club]
	lists *basecache.Store[[]club.Club]
}

var _ club.Repository = (*ClubRepository)(nil)

func NewClubRepository(next club.Repository, byID *basecache.Store[club.Club], lists *basecache.Store[[]club.Club]) *ClubRepository {
	return &ClubRepository{next: next, byID: byID, lists: lists}
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	items, err := r.lists.GetOrLoad(ctx, clubListKey, func(ctx context.Context) ([]club.Club, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]club.Club(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]club.Club(nil), items...), nil
}

func (r *ClubRepository) GetByID(ctx context.Context, id string) (club.Club, bool, error) {
	if item, ok := r.byID.Get(ctx, clubByIDPrefix+id); ok {
		return item, true, nil
	}

	item, exists, err := r.next.GetByID(ctx, id)
	if err != nil || !exists {
		return item, exists, err
	}
	r.byID.Set(ctx, clubByIDPrefix+id, item)
	return item, true, nil
}

func (r *ClubRepository) GetByKey(ctx context.Context, key club.Key) (club.Club, bool, error) {
	return r.next.GetByKey(ctx, key)
}

func (r *ClubRepository) InsertOrGet(ctx context.Context, c club.Club) (club.Club, bool, error) {
	item, inserted, err := r.next.InsertOrGet(ctx, c)
	if err == nil && inserted {
		r.invalidate(ctx)
	}
	return item, inserted, err
}

func (r *ClubRepository) Create(ctx context.Context, c club.Club) error {
	if err := r.next.Create(ctx, c); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *ClubRepository) Update(ctx context.Context, c club.Club) (bool, error) {
	updated, err := r.next.Update(ctx, c)
	r.invalidate(ctx)
	return updated, err
}

func (r *ClubRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.next.Delete(ctx, id)
	r.invalidate(ctx)
	return deleted, err
}

func (r *ClubRepository) invalidate(ctx context.Context) {
	r.byID.DeletePrefix(ctx, clubByIDPrefix)
	r.lists.Delete(ctx, clubListKey)
}
