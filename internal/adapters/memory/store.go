// Package memory holds an in-process mood store used when no database is
// configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

type Store struct {
	mu       sync.RWMutex
	profiles map[string]domain.MoodProfile
}

// NewStore returns a store seeded with the built-in mood table.
func NewStore() *Store {
	s := &Store{profiles: make(map[string]domain.MoodProfile)}
	for _, p := range domain.DefaultMoodProfiles() {
		s.profiles[p.Label] = p
	}
	return s
}

func (s *Store) Profile(_ context.Context, label string) (domain.MoodProfile, error) {
	label = domain.NormalizeLabel(label)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[label]
	if !ok {
		return domain.MoodProfile{}, fmt.Errorf("mood %q: %w", label, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Store) List(_ context.Context) ([]domain.MoodProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MoodProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *Store) Save(_ context.Context, p domain.MoodProfile) error {
	p.Label = domain.NormalizeLabel(p.Label)
	if p.Label == "" {
		return fmt.Errorf("save mood profile: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Label] = p
	return nil
}
