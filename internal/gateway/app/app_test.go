package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	artifactcache "proposalflow/internal/cache/artifact"
	"proposalflow/internal/gateway/config"
	artifactrepo "proposalflow/internal/gateway/repository/artifact"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:      ":0",
		Env:       "local",
		StorePath: t.TempDir(),
		LLM:       config.LLMConfig{Provider: "fake", RPS: 0, Retries: 0, MaxQuestions: 8},
		Questionnaire: config.QuestionnaireConfig{
			CallTimeout:        time.Second,
			ConfidenceUser:     1,
			ConfidenceAccepted: 0.8,
			ConfidenceBackfill: 0.6,
			SessionTTL:         time.Minute,
			MaxSessions:        8,
		},
	}
}

func TestNewWithFileStores(t *testing.T) {
	a, err := NewWithConfig(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, a.server)
	_, ok := a.stores.cacheStats().(artifactcache.MetricsSnapshot)
	assert.True(t, ok, "artifact store should be cached")
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewWithSQLiteStores(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "proposalflow.db")
	a, err := NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "other"
	_, err := NewWithConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestChooseArtifactStore(t *testing.T) {
	cfg := testConfig(t)
	called := false
	factory := func() (artifactrepo.Store, error) {
		called = true
		return artifactrepo.NewMemoryStore(), nil
	}

	got, err := chooseArtifactStore(cfg, artifactrepo.NewMemoryStore(), "memory", factory)
	require.NoError(t, err)
	assert.False(t, called)
	assert.IsType(t, &artifactcache.CachedStore{}, got)

	cfg.Artifact = config.ArtifactConfig{Enabled: true, Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "rfps"}
	_, err = chooseArtifactStore(cfg, artifactrepo.NewMemoryStore(), "memory", factory)
	require.NoError(t, err)
	assert.True(t, called)

	_, err = chooseArtifactStore(testConfig(t), nil, "none", factory)
	assert.Error(t, err)

	bare := &gatewayStores{artifact: artifactrepo.NewMemoryStore()}
	assert.Nil(t, bare.cacheStats())
}
