package questionnaire

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	questionnairerepo "proposalflow/internal/gateway/repository/questionnaire"
	qn "proposalflow/internal/questionnaire"
)

type Store = questionnairerepo.Store

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 4096,
	}
}

// CachedStore keeps recently saved or loaded questionnaires in memory.
// Listing always goes to the origin.
type CachedStore struct {
	origin Store
	byKey  *expirable.LRU[qn.Key, qn.Saved]
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
		byKey:  expirable.NewLRU[qn.Key, qn.Saved](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Save(ctx context.Context, saved qn.Saved) error {
	if err := s.origin.Save(ctx, saved); err != nil {
		s.byKey.Remove(saved.Key)
		return err
	}
	s.byKey.Add(saved.Key, saved.Clone())
	return nil
}

func (s *CachedStore) Load(ctx context.Context, key qn.Key) (qn.Saved, error) {
	if saved, ok := s.byKey.Get(key); ok {
		return saved.Clone(), nil
	}
	saved, err := s.origin.Load(ctx, key)
	if err != nil {
		return qn.Saved{}, err
	}
	s.byKey.Add(key, saved.Clone())
	return saved, nil
}

func (s *CachedStore) List(ctx context.Context, projectID string) ([]qn.Key, error) {
	return s.origin.List(ctx, projectID)
}
