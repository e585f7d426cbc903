package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	artifactcache "proposalflow/internal/cache/artifact"
	questionnairecache "proposalflow/internal/cache/questionnaire"
	workflowcache "proposalflow/internal/cache/workflow"
	"proposalflow/internal/gateway/config"
	artifactrepo "proposalflow/internal/gateway/repository/artifact"
	questionnairerepo "proposalflow/internal/gateway/repository/questionnaire"
	"proposalflow/internal/gateway/repository/sqldb"
	workflowrepo "proposalflow/internal/gateway/repository/workflow"
)

type gatewayStores struct {
	workflow      workflowrepo.Store
	questionnaire questionnairerepo.Store
	artifact      artifactrepo.Store

	close func() error
}

// cacheStats reports the artifact cache counters, or nil when the artifact
// store is not cached.
func (s *gatewayStores) cacheStats() any {
	if cs, ok := s.artifact.(*artifactcache.CachedStore); ok {
		return cs.Metrics()
	}
	return nil
}

func initStores(ctx context.Context, cfg *config.Config) (*gatewayStores, error) {
	s3Factory := newArtifactS3StoreFactory(cfg)

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		return initSQLStores(ctx, dsn, cfg, s3Factory)
	}
	return initFileStores(cfg, s3Factory)
}

func newArtifactS3StoreFactory(cfg *config.Config) func() (artifactrepo.Store, error) {
	return func() (artifactrepo.Store, error) {
		s3Cfg := artifactrepo.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
			URLExpiry: cfg.Artifact.URLExpiry,
		}
		s3Store, err := artifactrepo.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
		return s3Store, nil
	}
}

func initSQLStores(ctx context.Context, dsn string, cfg *config.Config, s3Factory func() (artifactrepo.Store, error)) (*gatewayStores, error) {
	db, err := sqldb.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	log.Printf("gateway stores: sql dialect=%s", db.Dialect())

	artifactStore, err := chooseArtifactStore(cfg, artifactrepo.NewSQLStore(db), "sql", s3Factory)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &gatewayStores{
		workflow:      workflowcache.NewCachedStore(workflowrepo.NewSQLStore(db), workflowcache.DefaultCacheConfig()),
		questionnaire: questionnairecache.NewCachedStore(questionnairerepo.NewSQLStore(db), questionnairecache.DefaultCacheConfig()),
		artifact:      artifactStore,
		close:         db.Close,
	}, nil
}

func initFileStores(cfg *config.Config, s3Factory func() (artifactrepo.Store, error)) (*gatewayStores, error) {
	root := cfg.StorePath
	log.Printf("gateway stores: json files under %s", root)

	artifactStore, err := chooseArtifactStore(cfg, artifactrepo.NewDiskStore(filepath.Join(root, "rfps")), "disk", s3Factory)
	if err != nil {
		return nil, err
	}
	return &gatewayStores{
		workflow:      workflowcache.NewCachedStore(workflowrepo.NewFileStore(filepath.Join(root, "workflows.json")), workflowcache.DefaultCacheConfig()),
		questionnaire: questionnairecache.NewCachedStore(questionnairerepo.NewFileStore(filepath.Join(root, "questionnaires.json")), questionnairecache.DefaultCacheConfig()),
		artifact:      artifactStore,
		close:         func() error { return nil },
	}, nil
}

func chooseArtifactStore(
	cfg *config.Config,
	fallback artifactrepo.Store,
	fallbackLabel string,
	s3Factory func() (artifactrepo.Store, error),
) (artifactrepo.Store, error) {
	var origin artifactrepo.Store
	if cfg.Artifact.CanUseS3() {
		s3Store, err := s3Factory()
		if err != nil {
			return nil, err
		}
		origin = s3Store
	} else {
		if cfg.Artifact.Enabled {
			log.Printf("artifact store: using %s fallback (s3 config incomplete)", fallbackLabel)
		}
		origin = fallback
	}
	if origin == nil {
		return nil, fmt.Errorf("artifact origin store is nil")
	}
	return artifactcache.NewCachedStore(origin, artifactcache.DefaultCacheConfig()), nil
}
