package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Object),
	}
}

func (s *MemoryStore) Put(_ context.Context, projectID, name, contentType string, content []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	projectID, name, err := normalize(projectID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[objectKey(projectID, name)] = Object{
		Name:        name,
		ContentType: contentTypeOr(contentType),
		Content:     append([]byte(nil), content...),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, projectID, name string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	projectID, name, err := normalize(projectID, name)
	if err != nil {
		return Object{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.data[objectKey(projectID, name)]
	if !ok {
		return Object{}, ErrNotFound
	}
	obj.Content = append([]byte(nil), obj.Content...)
	return obj, nil
}

func (s *MemoryStore) List(_ context.Context, projectID string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	prefix := projectID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 8)
	for key := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, strings.TrimPrefix(key, prefix))
	}
	sort.Strings(out)
	return out, nil
}

// GetURL is unsupported in memory; documents are served through the gateway.
func (s *MemoryStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}
