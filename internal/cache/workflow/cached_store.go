package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	workflowrepo "proposalflow/internal/gateway/repository/workflow"
	wf "proposalflow/internal/workflow"
)

type Store = workflowrepo.Store

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 2048,
	}
}

// CachedStore serves workflow records from memory and writes through to origin.
type CachedStore struct {
	origin Store
	byID   *expirable.LRU[string, wf.Record]
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		byID:   expirable.NewLRU[string, wf.Record](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Get(ctx context.Context, projectID string) (wf.Record, error) {
	projectID = strings.TrimSpace(projectID)
	if rec, ok := s.byID.Get(projectID); ok {
		return rec.Clone()
	}
	rec, err := s.origin.Get(ctx, projectID)
	if err != nil {
		return wf.Record{}, err
	}
	cp, err := rec.Clone()
	if err != nil {
		return wf.Record{}, err
	}
	s.byID.Add(projectID, cp)
	return rec, nil
}

func (s *CachedStore) Put(ctx context.Context, rec wf.Record) error {
	if err := s.origin.Put(ctx, rec); err != nil {
		s.byID.Remove(strings.TrimSpace(rec.ProjectID))
		return err
	}
	cp, err := rec.Clone()
	if err != nil {
		s.byID.Remove(strings.TrimSpace(rec.ProjectID))
		return nil
	}
	s.byID.Add(strings.TrimSpace(rec.ProjectID), cp)
	return nil
}
