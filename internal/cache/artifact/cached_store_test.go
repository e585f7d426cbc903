package artifact

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeOriginStore struct {
	mu sync.Mutex

	data map[string][]byte
	urls map[string]string

	getCalls  int
	putCalls  int
	listCalls int
	urlCalls  int

	failPut bool
}

func newFakeOriginStore() *fakeOriginStore {
	return &fakeOriginStore{
		data: map[string][]byte{},
		urls: map[string]string{},
	}
}

func (s *fakeOriginStore) Put(_ context.Context, projectID, name, _ string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPut {
		return fmt.Errorf("put failed")
	}
	s.data[projectID+"/"+name] = append([]byte(nil), content...)
	return nil
}

func (s *fakeOriginStore) Get(_ context.Context, projectID, name string) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	raw, ok := s.data[projectID+"/"+name]
	if !ok {
		return Object{}, fmt.Errorf("not found")
	}
	return Object{Name: name, ContentType: "application/pdf", Content: append([]byte(nil), raw...)}, nil
}

func (s *fakeOriginStore) GetURL(_ context.Context, projectID, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urlCalls++
	return s.urls[projectID+"/"+name], nil
}

func (s *fakeOriginStore) List(_ context.Context, projectID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := make([]string, 0, 8)
	prefix := projectID + "/"
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	origin := newFakeOriginStore()
	origin.data["p1/rfp.pdf"] = []byte("hello")
	store := NewCachedStore(origin, CacheConfig{
		BlobTTL: time.Minute, BlobMaxEntries: 8, BlobMaxBytes: 1024,
		ListTTL: time.Minute, ListMaxEntries: 8,
		URLTTL: time.Minute, URLMaxEntries: 8,
	})

	got1, err := store.Get(context.Background(), "p1", "rfp.pdf")
	if err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	got1.Content[0] = 'X'
	got2, err := store.Get(context.Background(), "p1", "rfp.pdf")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if string(got2.Content) != "hello" {
		t.Fatalf("cached content was mutated through a returned object: %q", got2.Content)
	}
	if origin.getCalls != 1 {
		t.Fatalf("expected one origin get call, got %d", origin.getCalls)
	}
	m := store.Metrics()
	if m.BlobHits != 1 || m.BlobMisses != 1 || m.OriginReads != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestCachedStoreSkipsOversizedBlobs(t *testing.T) {
	origin := newFakeOriginStore()
	origin.data["p1/big.pdf"] = []byte("0123456789")
	store := NewCachedStore(origin, CacheConfig{BlobMaxBytes: 4})

	for i := 0; i < 2; i++ {
		if _, err := store.Get(context.Background(), "p1", "big.pdf"); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	}
	if origin.getCalls != 2 {
		t.Fatalf("expected oversized blob to bypass the cache, got %d origin reads", origin.getCalls)
	}
}

func TestCachedStoreWriteThrough(t *testing.T) {
	origin := newFakeOriginStore()
	store := NewCachedStore(origin, DefaultCacheConfig())
	ctx := context.Background()

	if _, err := store.List(ctx, "p1"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := store.Put(ctx, "p1", "rfp.pdf", "application/pdf", []byte("new")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := store.Get(ctx, "p1", "rfp.pdf")
	if err != nil {
		t.Fatalf("get after put failed: %v", err)
	}
	if string(got.Content) != "new" {
		t.Fatalf("unexpected content: %q", got.Content)
	}
	names, err := store.List(ctx, "p1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"rfp.pdf"}) {
		t.Fatalf("list was not invalidated by put: %#v", names)
	}

	origin.failPut = true
	if err := store.Put(ctx, "p1", "b.pdf", "", []byte("bad")); err == nil {
		t.Fatalf("expected put error")
	}
	if _, err := store.Get(ctx, "p1", "b.pdf"); err == nil {
		t.Fatalf("expected miss for failed write")
	}
}

func TestCachedStoreTTLAndLRU(t *testing.T) {
	origin := newFakeOriginStore()
	origin.data["p1/a.pdf"] = []byte("A")
	origin.data["p1/b.pdf"] = []byte("B")
	ctx := context.Background()

	store := NewCachedStore(origin, CacheConfig{BlobTTL: time.Minute, BlobMaxEntries: 1})
	for _, name := range []string{"a.pdf", "b.pdf", "a.pdf"} {
		if _, err := store.Get(ctx, "p1", name); err != nil {
			t.Fatalf("get %s failed: %v", name, err)
		}
	}
	if origin.getCalls != 3 {
		t.Fatalf("expected 3 origin get calls with LRU eviction, got %d", origin.getCalls)
	}

	origin.getCalls = 0
	store2 := NewCachedStore(origin, CacheConfig{BlobTTL: 10 * time.Millisecond, BlobMaxEntries: 8})
	if _, err := store2.Get(ctx, "p1", "a.pdf"); err != nil {
		t.Fatalf("ttl get first failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := store2.Get(ctx, "p1", "a.pdf"); err != nil {
		t.Fatalf("ttl get second failed: %v", err)
	}
	if origin.getCalls != 2 {
		t.Fatalf("expected 2 origin reads after ttl expiry, got %d", origin.getCalls)
	}
}

func TestCachedStoreCachesURLs(t *testing.T) {
	origin := newFakeOriginStore()
	origin.urls["p1/rfp.pdf"] = "https://example/p1/rfp.pdf"
	store := NewCachedStore(origin, DefaultCacheConfig())

	for i := 0; i < 2; i++ {
		u, err := store.GetURL(context.Background(), "p1", "rfp.pdf")
		if err != nil {
			t.Fatalf("url failed: %v", err)
		}
		if u != "https://example/p1/rfp.pdf" {
			t.Fatalf("unexpected url %q", u)
		}
	}
	if origin.urlCalls != 1 {
		t.Fatalf("expected one origin url call, got %d", origin.urlCalls)
	}
}
