package workflow

import (
	"context"
	"errors"

	wf "proposalflow/internal/workflow"
)

var ErrNotFound = errors.New("workflow record not found")

// Store persists one workflow record per project.
type Store interface {
	Get(ctx context.Context, projectID string) (wf.Record, error)
	Put(ctx context.Context, rec wf.Record) error
}

func cloneRecord(rec wf.Record) (wf.Record, error) {
	return rec.Clone()
}
