package campaign

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	dErrors "veriseq/pkg/domain-errors"
)

// MemoryStore is an in-memory campaign Store for tests and single-process
// runs.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID]Campaign
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{campaigns: make(map[uuid.UUID]Campaign)}
}

func (s *MemoryStore) Create(_ context.Context, c Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.campaigns[c.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "campaign %s already exists", c.ID)
	}
	s.campaigns[c.ID] = c
	return nil
}

func (s *MemoryStore) Update(_ context.Context, c Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.campaigns[c.ID]; !exists {
		return dErrors.Newf(dErrors.CodeNotFound, "campaign %s not found", c.ID)
	}
	s.campaigns[c.ID] = c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return Campaign{}, dErrors.Newf(dErrors.CodeNotFound, "campaign %s not found", id)
	}
	return c, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
