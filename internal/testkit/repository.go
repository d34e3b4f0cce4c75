package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"glmdesign/domain/core"
	"glmdesign/domain/run"
)

// InMemoryDesignRunRepository implements DesignRunRepository with in-memory storage
type InMemoryDesignRunRepository struct {
	runs map[core.RunID]*run.DesignRun
	mu   sync.RWMutex
}

func NewInMemoryDesignRunRepository() *InMemoryDesignRunRepository {
	return &InMemoryDesignRunRepository{
		runs: make(map[core.RunID]*run.DesignRun),
	}
}

func (s *InMemoryDesignRunRepository) Save(ctx context.Context, r *run.DesignRun) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[r.ID]; exists {
		return fmt.Errorf("design run %s already exists", r.ID)
	}
	s.runs[r.ID] = r
	return nil
}

func (s *InMemoryDesignRunRepository) GetByID(ctx context.Context, id core.RunID) (*run.DesignRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return r, nil
}

// List returns runs newest first, matching the SQL repository
func (s *InMemoryDesignRunRepository) List(ctx context.Context, limit, offset int) ([]*run.DesignRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*run.DesignRun, 0, len(s.runs))
	for _, r := range s.runs {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].CreatedAt.Time(), all[j].CreatedAt.Time()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return all[i].ID > all[j].ID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*run.DesignRun{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemoryDesignRunRepository) Delete(ctx context.Context, id core.RunID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	delete(s.runs, id)
	return nil
}

// Count returns the number of stored runs
func (s *InMemoryDesignRunRepository) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
