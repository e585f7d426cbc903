package questionnaire

import (
	"context"

	qn "proposalflow/internal/questionnaire"
)

// Store is the questionnaire persistence port plus listing for the API.
type Store interface {
	qn.Store
	List(ctx context.Context, projectID string) ([]qn.Key, error)
}
