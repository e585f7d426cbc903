package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"proposalflow/internal/gateway/repository/sqldb"
)

const table = "rfp_documents"

// SQLStore keeps document bytes in the rfp_documents table.
type SQLStore struct {
	db *sqldb.DB
}

func NewSQLStore(db *sqldb.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, projectID, name, contentType string, content []byte) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	projectID, name, err := normalize(projectID, name)
	if err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	query, args := s.db.Builder().Insert(table).
		Columns("project_id", "name", "content_type", "content", "size", "updated_at").
		Values(projectID, name, contentTypeOr(contentType), content, int64(len(content)), time.Now().UTC().Format(time.RFC3339Nano)).
		OnConflict(
			entsql.ConflictColumns("project_id", "name"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save document %s: %w", objectKey(projectID, name), err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, projectID, name string) (Object, error) {
	if s == nil || s.db == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	projectID, name, err := normalize(projectID, name)
	if err != nil {
		return Object{}, err
	}
	b := s.db.Builder()
	query, args := b.Select("content_type", "content").
		From(b.Table(table)).
		Where(entsql.And(
			entsql.EQ("project_id", projectID),
			entsql.EQ("name", name),
		)).
		Query()
	obj := Object{Name: name}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&obj.ContentType, &obj.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, err
	}
	return obj, nil
}

func (s *SQLStore) List(ctx context.Context, projectID string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	b := s.db.Builder()
	query, args := b.Select("name").
		From(b.Table(table)).
		Where(entsql.EQ("project_id", projectID)).
		OrderBy("name").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}
