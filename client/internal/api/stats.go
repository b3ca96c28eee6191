package api

import (
	"context"

	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

// GetStats returns the dashboard counters.
func GetStats(ctx context.Context, d Doer) (*types.Stats, error) {
	var out types.Stats
	if err := doJSON(ctx, d, "get stats", types.NewGet("/stats", nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
