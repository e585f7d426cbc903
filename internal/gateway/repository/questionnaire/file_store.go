package questionnaire

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/safeio"
)

// FileStore keeps every questionnaire in one JSON file, rewritten on each save.
type FileStore struct {
	path string

	loadOnce sync.Once
	loadErr  error
	mu       sync.RWMutex
	byKey    map[qn.Key]qn.Saved
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		byKey: make(map[qn.Key]qn.Saved),
	}
}

func (s *FileStore) Save(_ context.Context, saved qn.Saved) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := saved.Key.Validate(); err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.byKey[saved.Key]
	s.byKey[saved.Key] = saved.Clone()
	if err := s.saveLocked(); err != nil {
		if had {
			s.byKey[saved.Key] = prev
		} else {
			delete(s.byKey, saved.Key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, key qn.Key) (qn.Saved, error) {
	if s == nil {
		return qn.Saved{}, fmt.Errorf("store is nil")
	}
	if err := s.ensureLoaded(); err != nil {
		return qn.Saved{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved, ok := s.byKey[key]
	if !ok {
		return qn.Saved{}, fmt.Errorf("%w: %s", qn.ErrNotFound, key)
	}
	return saved.Clone(), nil
}

func (s *FileStore) List(_ context.Context, projectID string) ([]qn.Key, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]qn.Key, 0)
	for k := range s.byKey {
		if k.ProjectID == projectID {
			out = append(out, k)
		}
	}
	sortKeys(out)
	return out, nil
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
			s.loadErr = fmt.Errorf("read questionnaire store: %w", err)
			return
		}
		var entries []qn.Saved
		if err := json.Unmarshal(data, &entries); err != nil {
			s.loadErr = fmt.Errorf("unmarshal questionnaire store: %w", err)
			return
		}
		for _, e := range entries {
			if err := e.Canonicalize(); err != nil {
				log.Printf("questionnaire store: skipping %s: %v", e.Key, err)
				continue
			}
			s.byKey[e.Key] = e
		}
	})
	return s.loadErr
}

func (s *FileStore) saveLocked() error {
	entries := make([]qn.Saved, 0, len(s.byKey))
	for _, e := range s.byKey {
		entries = append(entries, e)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return safeio.WriteFileAtomic(s.path, data, 0o644)
}
