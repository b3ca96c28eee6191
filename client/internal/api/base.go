package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

// Doer issues a request relative to the client's base URL and returns the
// body of a 2xx response. Implemented by client.Client.
type Doer interface {
	Do(ctx context.Context, req types.Request) ([]byte, error)
}

// Streamer is a Doer that can also hand back an unread 2xx response.
type Streamer interface {
	Doer
	Stream(ctx context.Context, req types.Request) (*http.Response, error)
}

// doJSON runs req and decodes the response body into out.
func doJSON(ctx context.Context, d Doer, op string, req types.Request, out any) error {
	body, err := d.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
