package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

// DefaultLogLimit matches the gateway's own default page size.
const DefaultLogLimit = 50

// ListLogs returns the most recent audit logs, newest first.
func ListLogs(ctx context.Context, d Doer, limit int) ([]types.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	q := url.Values{"limit": []string{strconv.Itoa(limit)}}
	var out []types.AuditLog
	if err := doJSON(ctx, d, "list logs", types.NewGet("/logs", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}
