package questionnaire

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	qn "proposalflow/internal/questionnaire"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[qn.Key]qn.Saved
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[qn.Key]qn.Saved)}
}

func (s *MemoryStore) Save(_ context.Context, saved qn.Saved) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := saved.Key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[saved.Key] = saved.Clone()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key qn.Key) (qn.Saved, error) {
	if s == nil {
		return qn.Saved{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved, ok := s.data[key]
	if !ok {
		return qn.Saved{}, fmt.Errorf("%w: %s", qn.ErrNotFound, key)
	}
	return saved.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, projectID string) ([]qn.Key, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]qn.Key, 0)
	for k := range s.data {
		if k.ProjectID == projectID {
			out = append(out, k)
		}
	}
	sortKeys(out)
	return out, nil
}

func sortKeys(keys []qn.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].WorkflowType != keys[j].WorkflowType {
			return keys[i].WorkflowType < keys[j].WorkflowType
		}
		return keys[i].Stage.Index() < keys[j].Stage.Index()
	})
}
