package questionnaire

import (
	"fmt"

	"proposalflow/internal/types"
)

// Responses maps question id to its single current response. Only ids from
// the question set it was built with can be stored.
type Responses struct {
	order []string
	items map[string]types.QuestionnaireResponse
}

func NewResponses(questions []types.Question) *Responses {
	r := &Responses{
		order: make([]string, 0, len(questions)),
		items: make(map[string]types.QuestionnaireResponse, len(questions)),
	}
	for _, q := range questions {
		r.order = append(r.order, q.ID)
	}
	return r
}

func (r *Responses) allowed(id string) bool {
	for _, qid := range r.order {
		if qid == id {
			return true
		}
	}
	return false
}

// Put inserts or overwrites the response for resp.QuestionID.
func (r *Responses) Put(resp types.QuestionnaireResponse) error {
	if !r.allowed(resp.QuestionID) {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, resp.QuestionID)
	}
	r.items[resp.QuestionID] = resp
	return nil
}

func (r *Responses) Get(id string) (types.QuestionnaireResponse, bool) {
	resp, ok := r.items[id]
	return resp, ok
}

func (r *Responses) Has(id string) bool {
	_, ok := r.items[id]
	return ok
}

func (r *Responses) Delete(id string) { delete(r.items, id) }

func (r *Responses) Len() int { return len(r.items) }

// List returns the responses in question order.
func (r *Responses) List() []types.QuestionnaireResponse {
	out := make([]types.QuestionnaireResponse, 0, len(r.items))
	for _, id := range r.order {
		if resp, ok := r.items[id]; ok {
			out = append(out, resp)
		}
	}
	return out
}

func (r *Responses) Clone() *Responses {
	out := &Responses{
		order: append([]string(nil), r.order...),
		items: make(map[string]types.QuestionnaireResponse, len(r.items)),
	}
	for k, v := range r.items {
		out.items[k] = v
	}
	return out
}
