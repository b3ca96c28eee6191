package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/HandSonic/LLM-Security-Gateway/client"
)

// Gateway is the part of the gateway client the tools call.
type Gateway interface {
	ListPolicies(ctx context.Context) ([]client.SecurityPolicy, error)
	UpdatePolicy(ctx context.Context, p client.SecurityPolicy) (*client.SecurityPolicy, error)
	ListLogs(ctx context.Context, limit int) ([]client.AuditLog, error)
	GetStats(ctx context.Context) (*client.Stats, error)
	ChatCompletion(ctx context.Context, req client.ChatCompletionRequest) (*client.ChatCompletionResponse, error)
}

// GatewayHandler exposes the gateway's admin and chat endpoints as tools.
type GatewayHandler struct {
	client Gateway
}

func NewGatewayHandler(c Gateway) *GatewayHandler { return &GatewayHandler{client: c} }

func (gh *GatewayHandler) RegisterTools(s *server.MCPServer) error {
	stats := mcp.NewTool("get_stats",
		mcp.WithDescription("Gateway totals: total_requests, blocked_requests and block_rate (0..1)"),
	)
	listPolicies := mcp.NewTool("list_policies",
		mcp.WithDescription("List per-category security policies (id, risk_category, risk_name, threshold, enabled)"),
		mcp.WithBoolean("enabled_only", mcp.Description("Only return enabled policies")),
	)
	updatePolicy := mcp.NewTool("update_policy",
		mcp.WithDescription("Change a policy's threshold and/or enabled flag; a turn is blocked when its category score reaches the threshold"),
		mcp.WithString("policy", mcp.Required(), mcp.Description("Policy id or risk code, e.g. 3 or \"dw\"")),
		mcp.WithNumber("threshold", mcp.Description("New threshold in [0,1]")),
		mcp.WithBoolean("enabled", mcp.Description("Enable or disable the policy")),
	)
	listLogs := mcp.NewTool("list_audit_logs",
		mcp.WithDescription("Most recent audited chat turns, newest first"),
		mcp.WithNumber("limit", mcp.Description("Rows to return (1-500, default 50)")),
		mcp.WithBoolean("blocked_only", mcp.Description("Only return blocked turns")),
	)
	chat := mcp.NewTool("chat_completion",
		mcp.WithDescription("Send one user message through the gateway; blocked turns report the risk category and score"),
		mcp.WithString("message", mcp.Required(), mcp.Description("User message")),
		mcp.WithString("model", mcp.Description("Model name (default "+client.DefaultChatModel+")")),
		mcp.WithString("system", mcp.Description("Optional system prompt")),
	)

	s.AddTool(stats, gh.handleGetStats)
	s.AddTool(listPolicies, gh.handleListPolicies)
	s.AddTool(updatePolicy, gh.handleUpdatePolicy)
	s.AddTool(listLogs, gh.handleListLogs)
	s.AddTool(chat, gh.handleChat)
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (gh *GatewayHandler) handleGetStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Debug().Msg("get_stats invoked")

	stats, err := gh.client.GetStats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("get_stats failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}
	return jsonResult(stats)
}

func (gh *GatewayHandler) handleListPolicies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	enabledOnly, _ := req.GetArguments()["enabled_only"].(bool)

	log.Debug().Bool("enabled_only", enabledOnly).Msg("list_policies invoked")

	policies, err := gh.client.ListPolicies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list_policies failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list policies: %v", err)), nil
	}
	if enabledOnly {
		kept := policies[:0]
		for _, p := range policies {
			if p.Enabled {
				kept = append(kept, p)
			}
		}
		policies = kept
	}
	return jsonResult(policies)
}

func (gh *GatewayHandler) handleUpdatePolicy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("policy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	threshold, hasThreshold := args["threshold"].(float64)
	enabled, hasEnabled := args["enabled"].(bool)
	if !hasThreshold && !hasEnabled {
		return mcp.NewToolResultError("nothing to update: pass threshold and/or enabled"), nil
	}

	log.Debug().Str("policy", key).Msg("update_policy invoked")

	start := time.Now()
	policies, err := gh.client.ListPolicies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("update_policy: list failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list policies: %v", err)), nil
	}
	p, ok := findPolicy(policies, key)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no policy matches %q", key)), nil
	}
	if hasThreshold {
		p.Threshold = threshold
	}
	if hasEnabled {
		p.Enabled = enabled
	}
	updated, err := gh.client.UpdatePolicy(ctx, p)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("update_policy failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to update policy: %v", err)), nil
	}
	log.Debug().Int("policy_id", updated.ID).Dur("elapsed", elapsed).Msg("update_policy completed")
	return jsonResult(updated)
}

func findPolicy(policies []client.SecurityPolicy, key string) (client.SecurityPolicy, bool) {
	id, idErr := strconv.Atoi(key)
	for _, p := range policies {
		if (idErr == nil && p.ID == id) || strings.EqualFold(p.RiskCategory, key) {
			return p, true
		}
	}
	return client.SecurityPolicy{}, false
}

func (gh *GatewayHandler) handleListLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	limit := client.DefaultLogLimit
	if v, ok := args["limit"].(float64); ok && v >= 1 && v <= 500 {
		limit = int(v)
	}
	blockedOnly, _ := args["blocked_only"].(bool)

	log.Debug().Int("limit", limit).Bool("blocked_only", blockedOnly).Msg("list_audit_logs invoked")

	logs, err := gh.client.ListLogs(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("list_audit_logs failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list audit logs: %v", err)), nil
	}
	if blockedOnly {
		kept := logs[:0]
		for _, l := range logs {
			if l.Blocked() {
				kept = append(kept, l)
			}
		}
		logs = kept
	}
	return jsonResult(logs)
}

type chatResult struct {
	Model   string          `json:"model"`
	Content string          `json:"content"`
	Blocked bool            `json:"blocked"`
	Verdict *client.Verdict `json:"verdict,omitempty"`
}

func (gh *GatewayHandler) handleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	args := req.GetArguments()
	model, _ := args["model"].(string)
	system, _ := args["system"].(string)

	chatReq := client.ChatCompletionRequest{Model: model}
	if system != "" {
		chatReq.Messages = append(chatReq.Messages, client.ChatMessage{Role: "system", Content: system})
	}
	chatReq.Messages = append(chatReq.Messages, client.ChatMessage{Role: "user", Content: message})

	log.Debug().Str("model", model).Msg("chat_completion invoked")

	start := time.Now()
	resp, err := gh.client.ChatCompletion(ctx, chatReq)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("chat_completion failed")
		return mcp.NewToolResultError(fmt.Sprintf("chat completion failed: %v", err)), nil
	}

	out := chatResult{Model: resp.Model, Content: resp.Content()}
	if v, blocked := client.ParseVerdict(out.Content); blocked {
		out.Blocked, out.Verdict = true, &v
		log.Info().Str("risk", v.Category).Float64("score", v.Score).Msg("chat_completion blocked")
	}
	return jsonResult(out)
}
