package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"proposalflow/internal/safeio"
)

// DiskStore persists documents under root/<projectID>/<name>. The root is
// opened lazily so a store can be built before the directory exists.
type DiskStore struct {
	root string

	once  sync.Once
	fsys  *safeio.SafeFS
	fsErr error
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: strings.TrimSpace(root)}
}

func (s *DiskStore) open() (*safeio.SafeFS, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if s.root == "" {
		return nil, fmt.Errorf("root is required")
	}
	s.once.Do(func() {
		s.fsys, s.fsErr = safeio.NewSafeFS(s.root)
	})
	return s.fsys, s.fsErr
}

func (s *DiskStore) Put(_ context.Context, projectID, name, _ string, content []byte) error {
	fsys, err := s.open()
	if err != nil {
		return err
	}
	projectID, name, err = normalize(projectID, name)
	if err != nil {
		return err
	}
	return fsys.SafeWriteFile(objectKey(projectID, name), content)
}

func (s *DiskStore) Get(_ context.Context, projectID, name string) (Object, error) {
	fsys, err := s.open()
	if err != nil {
		return Object{}, err
	}
	projectID, name, err = normalize(projectID, name)
	if err != nil {
		return Object{}, err
	}
	raw, err := fsys.SafeReadFile(objectKey(projectID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, ErrNotFound
		}
		return Object{}, err
	}
	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		ct = http.DetectContentType(raw)
	}
	return Object{Name: name, ContentType: ct, Content: raw}, nil
}

func (s *DiskStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}

func (s *DiskStore) List(_ context.Context, projectID string) ([]string, error) {
	fsys, err := s.open()
	if err != nil {
		return nil, err
	}
	projectID, _, err = normalize(projectID, "_")
	if err != nil {
		return nil, err
	}
	return fsys.SafeListFiles(projectID)
}
