package reviewer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"capture-gateway/internal/reviewer/models"
	id "capture-gateway/pkg/domain"
	"capture-gateway/pkg/platform/sentinel"
)

// InMemoryStore keeps reviewer accounts in memory. Used by tests and local runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	reviewers map[id.ReviewerID]*models.Reviewer
	byEmail   map[string]id.ReviewerID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		reviewers: make(map[id.ReviewerID]*models.Reviewer),
		byEmail:   make(map[string]id.ReviewerID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, reviewer *models.Reviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[reviewer.Email]; exists {
		return fmt.Errorf("email %s already registered: %w", reviewer.Email, sentinel.ErrConflict)
	}
	cp := *reviewer
	s.reviewers[reviewer.ID] = &cp
	s.byEmail[reviewer.Email] = reviewer.ID
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, exists := s.reviewers[reviewerID]; exists {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryStore) GetByEmail(_ context.Context, email string) (*models.Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if reviewerID, exists := s.byEmail[email]; exists {
		cp := *s.reviewers[reviewerID]
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Reviewer, 0, len(s.reviewers))
	for _, r := range s.reviewers {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, reviewer *models.Reviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reviewers[reviewer.ID]; !exists {
		return fmt.Errorf("reviewer %s: %w", reviewer.ID, sentinel.ErrNotFound)
	}
	cp := *reviewer
	s.reviewers[reviewer.ID] = &cp
	return nil
}
