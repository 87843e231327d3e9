package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/match-analysis/internal/domain/match"
)

type MatchRepository struct {
	store *Store
	inTx  bool
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) error {
	return r.store.write(r.inTx, func(d *state) error {
		if _, ok := d.users[m.OwnerUID]; !ok {
			return fmt.Errorf("match owner %s does not exist", m.OwnerUID)
		}
		if _, ok := d.matches[m.ID]; ok {
			return fmt.Errorf("match %s already exists", m.ID)
		}
		d.matches[m.ID] = m
		return nil
	})
}

func (r *MatchRepository) CreateClub(_ context.Context, c match.Club) error {
	return r.store.write(r.inTx, func(d *state) error {
		if _, ok := d.matches[c.MatchID]; !ok {
			return fmt.Errorf("match %s does not exist", c.MatchID)
		}
		if _, ok := d.clubs[c.ClubID]; !ok {
			return fmt.Errorf("club %s does not exist", c.ClubID)
		}
		for _, existing := range d.matchClubs {
			if existing.MatchID == c.MatchID && existing.TeamRole == c.TeamRole {
				return fmt.Errorf("match %s already has a %s club", c.MatchID, c.TeamRole)
			}
		}
		d.matchClubs[c.ID] = c
		return nil
	})
}

func (r *MatchRepository) CreatePlayer(_ context.Context, p match.Player) error {
	return r.store.write(r.inTx, func(d *state) error {
		mc, ok := d.matchClubs[p.MatchClubID]
		if !ok || mc.MatchID != p.MatchID {
			return fmt.Errorf("match club %s does not belong to match %s", p.MatchClubID, p.MatchID)
		}
		if p.PlayerProfileID != "" {
			if _, ok := d.profiles[p.PlayerProfileID]; !ok {
				return fmt.Errorf("player profile %s does not exist", p.PlayerProfileID)
			}
		}
		d.matchPlayers[p.ID] = p
		return nil
	})
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	var (
		m  match.Match
		ok bool
	)
	r.store.read(func(d *state) {
		m, ok = d.matches[id]
	})
	return m, ok, nil
}

func (r *MatchRepository) GetDetail(_ context.Context, id string) (match.Detail, bool, error) {
	var (
		detail match.Detail
		ok     bool
	)
	r.store.read(func(d *state) {
		detail.Match, ok = d.matches[id]
		if !ok {
			return
		}

		detail.Clubs = make([]match.Club, 0, 2)
		for _, c := range d.matchClubs {
			if c.MatchID == id {
				detail.Clubs = append(detail.Clubs, c)
			}
		}
		detail.Players = make([]match.PlayerDetail, 0)
		for _, p := range d.matchPlayers {
			if p.MatchID != id {
				continue
			}
			pd := match.PlayerDetail{Player: p}
			if profile, linked := d.profiles[p.PlayerProfileID]; linked && p.PlayerProfileID != "" {
				pd.Profile = &profile
			}
			detail.Players = append(detail.Players, pd)
		}
		if res, found := d.results[id]; found {
			detail.Result = &res
		}
	})
	if !ok {
		return match.Detail{}, false, nil
	}

	sort.Slice(detail.Clubs, func(i, j int) bool {
		if detail.Clubs[i].IsUserTeam != detail.Clubs[j].IsUserTeam {
			return detail.Clubs[i].IsUserTeam
		}
		return detail.Clubs[i].ID < detail.Clubs[j].ID
	})
	sort.Slice(detail.Players, func(i, j int) bool {
		a, b := detail.Players[i], detail.Players[j]
		if a.IsUserTeam != b.IsUserTeam {
			return a.IsUserTeam
		}
		if a.JerseyNumber != b.JerseyNumber {
			return a.JerseyNumber < b.JerseyNumber
		}
		return a.ID < b.ID
	})
	return detail, true, nil
}

func (r *MatchRepository) ListByOwner(_ context.Context, ownerUID string) ([]match.Match, error) {
	out := make([]match.Match, 0)
	r.store.read(func(d *state) {
		for _, m := range d.matches {
			if m.OwnerUID == ownerUID {
				out = append(out, m)
			}
		}
	})
	sortNewestFirst(out)
	return out, nil
}

func (r *MatchRepository) List(_ context.Context, offset, limit int) ([]match.Match, error) {
	all := make([]match.Match, 0)
	r.store.read(func(d *state) {
		for _, m := range d.matches {
			all = append(all, m)
		}
	})
	sortNewestFirst(all)

	if offset < 0 || offset >= len(all) {
		return []match.Match{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *MatchRepository) UpdateStatus(_ context.Context, id string, status match.Status) (bool, error) {
	var updated bool
	err := r.store.write(r.inTx, func(d *state) error {
		m, ok := d.matches[id]
		if !ok {
			return nil
		}
		m.Status = status
		d.matches[id] = m
		updated = true
		return nil
	})
	return updated, err
}

func (r *MatchRepository) UpdateLineupImage(_ context.Context, id, url string) (bool, error) {
	var updated bool
	err := r.store.write(r.inTx, func(d *state) error {
		m, ok := d.matches[id]
		if !ok {
			return nil
		}
		m.LineupImageURL = url
		d.matches[id] = m
		updated = true
		return nil
	})
	return updated, err
}

// PutResult stores an analysis result the way the external worker would.
func (r *MatchRepository) PutResult(_ context.Context, res match.Result) error {
	return r.store.write(r.inTx, func(d *state) error {
		if _, ok := d.matches[res.MatchID]; !ok {
			return fmt.Errorf("match %s does not exist", res.MatchID)
		}
		d.results[res.MatchID] = res
		return nil
	})
}

func sortNewestFirst(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}
