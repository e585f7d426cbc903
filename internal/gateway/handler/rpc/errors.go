package rpc

import (
	"context"
	"errors"
	"strconv"

	"connectrpc.com/connect"

	"proposalflow/internal/cost"
	artifactrepo "proposalflow/internal/gateway/repository/artifact"
	workflowrepo "proposalflow/internal/gateway/repository/workflow"
	questionnairesvc "proposalflow/internal/gateway/service/questionnaire"
	qn "proposalflow/internal/questionnaire"
	wf "proposalflow/internal/workflow"
)

// Metadata keys attached to validation and incomplete errors.
const (
	metaQuestionID = "Questionnaire-Question-Id"
	metaRule       = "Questionnaire-Rule"
	metaFirstIndex = "Questionnaire-First-Index"
)

// toConnectError maps domain errors onto Connect codes. Errors that already
// carry a code pass through.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	var (
		verr   *qn.ValidationError
		incErr *qn.IncompleteError
		locked *wf.StageLockedError
		genErr *qn.GenerationFailure
		pErr   *qn.PersistenceFailure
	)
	switch {
	case errors.As(err, &verr):
		out := connect.NewError(connect.CodeInvalidArgument, err)
		out.Meta().Set(metaQuestionID, verr.QuestionID)
		out.Meta().Set(metaRule, verr.Rule)
		return out
	case errors.As(err, &incErr):
		out := connect.NewError(connect.CodeFailedPrecondition, err)
		out.Meta().Set(metaQuestionID, incErr.FirstID)
		out.Meta().Set(metaFirstIndex, strconv.Itoa(incErr.FirstIndex))
		return out
	case errors.As(err, &locked), errors.Is(err, qn.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, qn.ErrBusy):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.As(err, &genErr), errors.As(err, &pErr):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, qn.ErrNotFound),
		errors.Is(err, qn.ErrNoSuggestion),
		errors.Is(err, workflowrepo.ErrNotFound),
		errors.Is(err, artifactrepo.ErrNotFound),
		errors.Is(err, questionnairesvc.ErrSessionNotFound),
		errors.Is(err, cost.ErrItemNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, qn.ErrUnknownQuestion),
		errors.Is(err, qn.ErrOutOfRange),
		errors.Is(err, wf.ErrUnknownStage),
		errors.Is(err, wf.ErrInvalidResult),
		errors.Is(err, cost.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}
