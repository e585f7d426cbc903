package artifact

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	artifactrepo "proposalflow/internal/gateway/repository/artifact"
)

type Store = artifactrepo.Store
type Object = artifactrepo.Object

type CacheConfig struct {
	BlobTTL        time.Duration
	BlobMaxEntries int
	// BlobMaxBytes skips caching documents larger than this. Zero caches all.
	BlobMaxBytes int

	ListTTL        time.Duration
	ListMaxEntries int

	URLTTL        time.Duration
	URLMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BlobTTL:        5 * time.Minute,
		BlobMaxEntries: 256,
		BlobMaxBytes:   16 * 1024 * 1024, // 16MiB
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
		URLTTL:         5 * time.Minute,
		URLMaxEntries:  1024,
	}
}

type MetricsSnapshot struct {
	BlobHits       uint64 `json:"blobHits"`
	BlobMisses     uint64 `json:"blobMisses"`
	ListHits       uint64 `json:"listHits"`
	ListMisses     uint64 `json:"listMisses"`
	URLHits        uint64 `json:"urlHits"`
	URLMisses      uint64 `json:"urlMisses"`
	OriginReads    uint64 `json:"originReads"`
	OriginWrites   uint64 `json:"originWrites"`
	OriginReadErr  uint64 `json:"originReadErr"`
	OriginWriteErr uint64 `json:"originWriteErr"`
}

type Metrics struct {
	blobHits       atomic.Uint64
	blobMisses     atomic.Uint64
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	urlHits        atomic.Uint64
	urlMisses      atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		BlobHits:       m.blobHits.Load(),
		BlobMisses:     m.blobMisses.Load(),
		ListHits:       m.listHits.Load(),
		ListMisses:     m.listMisses.Load(),
		URLHits:        m.urlHits.Load(),
		URLMisses:      m.urlMisses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore is a read-through, write-through cache in front of a document store.
type CachedStore struct {
	origin       Store
	blobMaxBytes int

	blobCache *expirable.LRU[string, Object]
	listCache *expirable.LRU[string, []string]
	urlCache  *expirable.LRU[string, string]
	metrics   Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.BlobTTL <= 0 {
		cfg.BlobTTL = def.BlobTTL
	}
	if cfg.BlobMaxEntries <= 0 {
		cfg.BlobMaxEntries = def.BlobMaxEntries
	}
	if cfg.BlobMaxBytes < 0 {
		cfg.BlobMaxBytes = def.BlobMaxBytes
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = def.URLTTL
	}
	if cfg.URLMaxEntries <= 0 {
		cfg.URLMaxEntries = def.URLMaxEntries
	}

	return &CachedStore{
		origin:       origin,
		blobMaxBytes: cfg.BlobMaxBytes,
		blobCache:    expirable.NewLRU[string, Object](cfg.BlobMaxEntries, nil, cfg.BlobTTL),
		listCache:    expirable.NewLRU[string, []string](cfg.ListMaxEntries, nil, cfg.ListTTL),
		urlCache:     expirable.NewLRU[string, string](cfg.URLMaxEntries, nil, cfg.URLTTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, projectID, name, contentType string, content []byte) error {
	s.metrics.originWrites.Add(1)
	if err := s.origin.Put(ctx, projectID, name, contentType, content); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}

	key := cacheKey(projectID, name)
	s.listCache.Remove(strings.TrimSpace(projectID))
	s.urlCache.Remove(key)
	// the origin may normalise the content type, so the next read refills
	s.blobCache.Remove(key)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, projectID, name string) (Object, error) {
	key := cacheKey(projectID, name)
	if obj, ok := s.blobCache.Get(key); ok {
		s.metrics.blobHits.Add(1)
		return copyObject(obj), nil
	}
	s.metrics.blobMisses.Add(1)
	s.metrics.originReads.Add(1)

	obj, err := s.origin.Get(ctx, projectID, name)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return Object{}, err
	}
	if s.blobMaxBytes == 0 || len(obj.Content) <= s.blobMaxBytes {
		s.blobCache.Add(key, copyObject(obj))
	}
	return obj, nil
}

func (s *CachedStore) GetURL(ctx context.Context, projectID, name string) (string, error) {
	key := cacheKey(projectID, name)
	if cached, ok := s.urlCache.Get(key); ok {
		s.metrics.urlHits.Add(1)
		return cached, nil
	}
	s.metrics.urlMisses.Add(1)
	s.metrics.originReads.Add(1)

	url, err := s.origin.GetURL(ctx, projectID, name)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return "", err
	}
	if strings.TrimSpace(url) != "" {
		s.urlCache.Add(key, url)
	}
	return url, nil
}

func (s *CachedStore) List(ctx context.Context, projectID string) ([]string, error) {
	projectID = strings.TrimSpace(projectID)
	if list, ok := s.listCache.Get(projectID); ok {
		s.metrics.listHits.Add(1)
		return append([]string(nil), list...), nil
	}
	s.metrics.listMisses.Add(1)
	s.metrics.originReads.Add(1)

	list, err := s.origin.List(ctx, projectID)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	s.listCache.Add(projectID, append([]string(nil), list...))
	return list, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}

func cacheKey(projectID, name string) string {
	return strings.TrimSpace(projectID) + "/" + strings.TrimLeft(strings.TrimSpace(name), "/")
}

func copyObject(o Object) Object {
	o.Content = append([]byte(nil), o.Content...)
	return o
}
