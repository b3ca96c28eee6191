package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

// ListPolicies returns every security policy.
func ListPolicies(ctx context.Context, d Doer) ([]types.SecurityPolicy, error) {
	var out []types.SecurityPolicy
	if err := doJSON(ctx, d, "list policies", types.NewGet("/policies", nil), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePolicy sends the full policy; the gateway applies threshold and enabled.
func UpdatePolicy(ctx context.Context, d Doer, p types.SecurityPolicy) (*types.SecurityPolicy, error) {
	if err := types.ValidatePolicy(p); err != nil {
		return nil, err
	}
	req := types.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/policies/%d", p.ID),
		Body:   p,
	}
	var out types.SecurityPolicy
	if err := doJSON(ctx, d, "update policy", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
