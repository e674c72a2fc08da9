package models

import (
	"context"
	"sort"
	"sync"
)

// ProfileStore keeps profile records in memory, keyed by username.
// Records are copied on the way in and out.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*ProfileMetrics
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*ProfileMetrics),
	}
}

func (s *ProfileStore) Load(_ context.Context, username string) (*ProfileMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[username]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (s *ProfileStore) Save(_ context.Context, p *ProfileMetrics) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.profiles[p.Username]; ok && !cur.CreatedAt.IsZero() && !cur.CreatedAt.Equal(p.CreatedAt) {
		return ErrUsernameChanged
	}
	s.profiles[p.Username] = p.Clone()
	return nil
}

func (s *ProfileStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[username]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, username)
	return nil
}

func (s *ProfileStore) DeleteAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.profiles)
	s.profiles = make(map[string]*ProfileMetrics)
	return n, nil
}

// List returns every record ordered by username.
func (s *ProfileStore) List(_ context.Context) ([]*ProfileMetrics, error) {
	s.mu.RLock()
	out := make([]*ProfileMetrics, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Username < out[j].Username
	})
	return out, nil
}

func (s *ProfileStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

func (s *ProfileStore) Snapshot() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make(map[string]*ProfileMetrics, len(s.profiles))
	for k, v := range s.profiles {
		profiles[k] = v.Clone()
	}
	return &Storage{Version: StorageVersion, Profiles: profiles}
}

// Restore replaces the store content with a snapshot. Invalid records are skipped
// and their usernames returned.
func (s *ProfileStore) Restore(storage *Storage) []string {
	profiles := make(map[string]*ProfileMetrics)
	var skipped []string
	if storage != nil {
		for k, v := range storage.Profiles {
			if v == nil || v.Username != k || v.Validate() != nil {
				skipped = append(skipped, k)
				continue
			}
			profiles[k] = v.Clone()
		}
	}
	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()
	sort.Strings(skipped)
	return skipped
}
