package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"proposalflow/internal/gateway/repository/sqldb"
	wf "proposalflow/internal/workflow"
)

const table = "workflow_records"

type SQLStore struct {
	db *sqldb.DB
}

func NewSQLStore(db *sqldb.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, projectID string) (wf.Record, error) {
	if s == nil || s.db == nil {
		return wf.Record{}, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	b := s.db.Builder()
	query, args := b.Select("record").
		From(b.Table(table)).
		Where(entsql.EQ("project_id", projectID)).
		Query()
	var raw string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return wf.Record{}, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	if err != nil {
		return wf.Record{}, fmt.Errorf("load workflow %s: %w", projectID, err)
	}
	var rec wf.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return wf.Record{}, fmt.Errorf("decode workflow record: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) Put(ctx context.Context, rec wf.Record) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(rec.ProjectID) == "" {
		return fmt.Errorf("project_id is required")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode workflow record: %w", err)
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	query, args := s.db.Builder().Insert(table).
		Columns("project_id", "workflow_type", "current_stage", "record", "updated_at").
		Values(rec.ProjectID, string(rec.WorkflowType), string(rec.Current), string(raw), updated.UTC().Format(time.RFC3339Nano)).
		OnConflict(
			entsql.ConflictColumns("project_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save workflow %s: %w", rec.ProjectID, err)
	}
	return nil
}
