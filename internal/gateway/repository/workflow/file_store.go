package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"proposalflow/internal/safeio"
	wf "proposalflow/internal/workflow"
)

// FileStore keeps all workflow records in one JSON file.
type FileStore struct {
	path string

	loadOnce sync.Once
	loadErr  error
	mu       sync.RWMutex
	byID     map[string]wf.Record
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		byID: make(map[string]wf.Record),
	}
}

func (s *FileStore) Get(_ context.Context, projectID string) (wf.Record, error) {
	if s == nil {
		return wf.Record{}, fmt.Errorf("store is nil")
	}
	if err := s.ensureLoaded(); err != nil {
		return wf.Record{}, err
	}
	projectID = strings.TrimSpace(projectID)
	s.mu.RLock()
	rec, ok := s.byID[projectID]
	s.mu.RUnlock()
	if !ok {
		return wf.Record{}, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	return cloneRecord(rec)
}

func (s *FileStore) Put(_ context.Context, rec wf.Record) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(rec.ProjectID) == "" {
		return fmt.Errorf("project_id is required")
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	cp, err := cloneRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.byID[rec.ProjectID]
	s.byID[rec.ProjectID] = cp
	if err := s.saveLocked(); err != nil {
		if had {
			s.byID[rec.ProjectID] = prev
		} else {
			delete(s.byID, rec.ProjectID)
		}
		return err
	}
	return nil
}

func (s *FileStore) ensureLoaded() error {
	s.loadOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		data, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			s.loadErr = fmt.Errorf("read workflow store: %w", err)
			return
		}
		var records []wf.Record
		if err := json.Unmarshal(data, &records); err != nil {
			s.loadErr = fmt.Errorf("unmarshal workflow store: %w", err)
			return
		}
		for _, rec := range records {
			s.byID[rec.ProjectID] = rec
		}
	})
	return s.loadErr
}

func (s *FileStore) saveLocked() error {
	records := make([]wf.Record, 0, len(s.byID))
	for _, rec := range s.byID {
		records = append(records, rec)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return safeio.WriteFileAtomic(s.path, data, 0o644)
}
