package proposalflowv1

import (
	"encoding/json"
	"fmt"
)

// Codec carries the service messages as plain JSON. It registers under the
// "json" name, so Connect clients that speak application/json (and
// application/connect+json for streams) interoperate unchanged.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}
