package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB is a database handle plus the ent dialect used to build its queries.
type DB struct {
	*sql.DB
	dialect string

	schemaOnce sync.Once
	schemaErr  error
}

// Open connects to dsn. postgres:// and postgresql:// URLs use pgx;
// sqlite://<path> (or sqlite://:memory:) uses the pure-Go SQLite driver.
func Open(ctx context.Context, dsn string) (*DB, error) {
	dsn = strings.TrimSpace(dsn)
	var (
		driver, source, dia string
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver, source, dia = "pgx", dsn, dialect.Postgres
	case strings.HasPrefix(dsn, "sqlite://"):
		driver, source, dia = "sqlite", strings.TrimPrefix(dsn, "sqlite://"), dialect.SQLite
	default:
		return nil, fmt.Errorf("unsupported database url %q", dsn)
	}
	if source == "" {
		return nil, fmt.Errorf("database url %q has no target", dsn)
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if dia == dialect.SQLite {
		// a single connection keeps :memory: databases shared and serialises writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	out := &DB{DB: db, dialect: dia}
	if err := out.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

func (d *DB) Dialect() string { return d.dialect }

// Builder returns an ent SQL builder bound to the connection's dialect.
func (d *DB) Builder() *entsql.DialectBuilder { return entsql.Dialect(d.dialect) }

const schema = `
CREATE TABLE IF NOT EXISTS questionnaires (
  project_id TEXT NOT NULL,
  workflow_type TEXT NOT NULL,
  stage TEXT NOT NULL,
  questions TEXT NOT NULL,
  responses TEXT NOT NULL,
  saved_at TEXT NOT NULL,
  PRIMARY KEY (project_id, workflow_type, stage)
);

CREATE TABLE IF NOT EXISTS workflow_records (
  project_id TEXT PRIMARY KEY,
  workflow_type TEXT NOT NULL,
  current_stage TEXT NOT NULL,
  record TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rfp_documents (
  project_id TEXT NOT NULL,
  name TEXT NOT NULL,
  content_type TEXT NOT NULL,
  content %s NOT NULL,
  size BIGINT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (project_id, name)
);
`

// EnsureSchema creates the tables once per handle.
func (d *DB) EnsureSchema(ctx context.Context) error {
	d.schemaOnce.Do(func() {
		blob := "BLOB"
		if d.dialect == dialect.Postgres {
			blob = "BYTEA"
		}
		for _, stmt := range strings.Split(fmt.Sprintf(schema, blob), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := d.ExecContext(ctx, stmt); err != nil {
				d.schemaErr = fmt.Errorf("ensure schema: %w", err)
				return
			}
		}
	})
	return d.schemaErr
}
