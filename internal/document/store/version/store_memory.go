package version

import (
	"context"
	"sync"

	"capture-gateway/internal/document/models"
)

// InMemoryStore keeps version chains in memory. Used by tests and by local
// runs without Postgres.
type InMemoryStore struct {
	mu       sync.RWMutex
	versions map[string][]*models.DocumentVersion
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		versions: make(map[string][]*models.DocumentVersion),
	}
}

func (s *InMemoryStore) Append(_ context.Context, version *models.DocumentVersion) (*models.DocumentVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := s.versions[version.DIN]
	stored := *version
	stored.Version = len(chain) + 1
	s.versions[version.DIN] = append(chain, &stored)

	out := stored
	return &out, nil
}

func (s *InMemoryStore) Get(_ context.Context, din string, version int) (*models.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.versions[din]
	if version < 1 || version > len(chain) {
		return nil, nil
	}
	out := *chain[version-1]
	return &out, nil
}

func (s *InMemoryStore) Latest(_ context.Context, din string) (*models.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.versions[din]
	if len(chain) == 0 {
		return nil, nil
	}
	out := *chain[len(chain)-1]
	return &out, nil
}

func (s *InMemoryStore) List(_ context.Context, din string) ([]*models.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.versions[din]
	out := make([]*models.DocumentVersion, 0, len(chain))
	for _, v := range chain {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}
