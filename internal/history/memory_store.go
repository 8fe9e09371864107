package history

import (
	"context"
	"sync"
)

// maxMemoryAssessments bounds the in-memory store; the oldest entries are
// dropped once the cap is reached.
const maxMemoryAssessments = 1000

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments []*Assessment
}

// NewMemoryStore creates an in-memory assessment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *a
	s.assessments = append(s.assessments, &stored)
	if len(s.assessments) > maxMemoryAssessments {
		s.assessments = s.assessments[len(s.assessments)-maxMemoryAssessments:]
	}
	return nil
}

// Recent returns up to limit assessments, most recent first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	start := len(s.assessments) - limit
	if start < 0 {
		start = 0
	}

	result := make([]*Assessment, 0, len(s.assessments)-start)
	for i := len(s.assessments) - 1; i >= start; i-- {
		a := *s.assessments[i]
		result = append(result, &a)
	}
	return result, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assessments), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
