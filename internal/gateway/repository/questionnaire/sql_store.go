package questionnaire

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
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

const table = "questionnaires"

// SQLStore persists questionnaires in Postgres or SQLite. Save is a single
// upsert, so concurrent writers for one key resolve last-write-wins.
type SQLStore struct {
	db *sqldb.DB
}

func NewSQLStore(db *sqldb.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, saved qn.Saved) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	if err := saved.Key.Validate(); err != nil {
		return err
	}
	questions, err := json.Marshal(saved.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	responses, err := json.Marshal(saved.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	savedAt := saved.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	query, args := s.db.Builder().Insert(table).
		Columns("project_id", "workflow_type", "stage", "questions", "responses", "saved_at").
		Values(saved.Key.ProjectID, string(saved.Key.WorkflowType), string(saved.Key.Stage),
			string(questions), string(responses), savedAt.UTC().Format(time.RFC3339Nano)).
		OnConflict(
			entsql.ConflictColumns("project_id", "workflow_type", "stage"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save questionnaire %s: %w", saved.Key, err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, key qn.Key) (qn.Saved, error) {
	if s == nil || s.db == nil {
		return qn.Saved{}, fmt.Errorf("store is nil")
	}
	b := s.db.Builder()
	query, args := b.Select("questions", "responses", "saved_at").
		From(b.Table(table)).
		Where(entsql.And(
			entsql.EQ("project_id", key.ProjectID),
			entsql.EQ("workflow_type", string(key.WorkflowType)),
			entsql.EQ("stage", string(key.Stage)),
		)).
		Query()

	var questions, responses, savedAt string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&questions, &responses, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return qn.Saved{}, fmt.Errorf("%w: %s", qn.ErrNotFound, key)
	}
	if err != nil {
		return qn.Saved{}, fmt.Errorf("load questionnaire %s: %w", key, err)
	}

	out := qn.Saved{Key: key}
	if err := json.Unmarshal([]byte(questions), &out.Questions); err != nil {
		return qn.Saved{}, fmt.Errorf("decode questions: %w", err)
	}
	out.Responses, err = types.DecodeResponses(out.Questions, []byte(responses))
	if err != nil {
		return qn.Saved{}, err
	}
	if out.Responses == nil {
		out.Responses = []types.QuestionnaireResponse{}
	}
	if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
		out.SavedAt = t
	}
	return out, nil
}

func (s *SQLStore) List(ctx context.Context, projectID string) ([]qn.Key, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	b := s.db.Builder()
	query, args := b.Select("workflow_type", "stage").
		From(b.Table(table)).
		Where(entsql.EQ("project_id", projectID)).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questionnaires: %w", err)
	}
	defer rows.Close()

	out := make([]qn.Key, 0)
	for rows.Next() {
		var wt, stage string
		if err := rows.Scan(&wt, &stage); err != nil {
			return nil, err
		}
		out = append(out, qn.Key{ProjectID: projectID, WorkflowType: types.WorkflowType(wt), Stage: workflow.Stage(stage)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortKeys(out)
	return out, nil
}
