package types

import "time"

// ------------------------------
// Gateway Domain Entities
// ------------------------------

// SecurityPolicy is the per-category blocking rule stored by the gateway.
type SecurityPolicy struct {
	ID           int     `json:"id"`
	RiskCategory string  `json:"risk_category"`
	RiskName     string  `json:"risk_name"`
	Threshold    float64 `json:"threshold"`
	Enabled      bool    `json:"enabled"`
}

// Audit actions recorded by the gateway.
const (
	ActionAllow               = "allow"
	ActionBlockPrompt         = "block_prompt"
	ActionBlockResponse       = "block_response"
	ActionBlockResponseStream = "block_response_stream"
)

// AuditLog is one audited chat turn.
type AuditLog struct {
	ID            int       `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	UserInput     string    `json:"user_input"`
	ModelResponse *string   `json:"model_response"`
	RiskScore     *float64  `json:"risk_score"`
	RiskDetails   *string   `json:"risk_details"` // JSON object of category -> score
	Action        string    `json:"action"`
	LatencyMS     float64   `json:"latency_ms"`
}

// Blocked reports whether the gateway refused the turn.
func (l AuditLog) Blocked() bool { return l.Action != ActionAllow }

// Stats is the dashboard summary.
type Stats struct {
	TotalRequests   int     `json:"total_requests"`
	BlockedRequests int     `json:"blocked_requests"`
	BlockRate       float64 `json:"block_rate"`
}
