package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	wf "proposalflow/internal/workflow"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]wf.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]wf.Record)}
}

func (s *MemoryStore) Get(_ context.Context, projectID string) (wf.Record, error) {
	if s == nil {
		return wf.Record{}, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	s.mu.RLock()
	rec, ok := s.data[projectID]
	s.mu.RUnlock()
	if !ok {
		return wf.Record{}, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	return cloneRecord(rec)
}

func (s *MemoryStore) Put(_ context.Context, rec wf.Record) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(rec.ProjectID) == "" {
		return fmt.Errorf("project_id is required")
	}
	cp, err := cloneRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ProjectID] = cp
	return nil
}
