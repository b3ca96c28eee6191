package client

import (
	"github.com/HandSonic/LLM-Security-Gateway/client/internal/api"
	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	Request               = types.Request
	ChatMessage           = types.ChatMessage
	ChatCompletionRequest = types.ChatCompletionRequest

	// Domain entities
	SecurityPolicy = types.SecurityPolicy
	AuditLog       = types.AuditLog
	Stats          = types.Stats
	Risk           = types.Risk
	Verdict        = types.Verdict

	// Responses
	ChatCompletionResponse    = types.ChatCompletionResponse
	ChatCompletionChoice      = types.ChatCompletionChoice
	ChatCompletionChunk       = types.ChatCompletionChunk
	ChatCompletionChunkChoice = types.ChatCompletionChunkChoice
	ChatDelta                 = types.ChatDelta
)

// Audit actions.
const (
	ActionAllow               = types.ActionAllow
	ActionBlockPrompt         = types.ActionBlockPrompt
	ActionBlockResponse       = types.ActionBlockResponse
	ActionBlockResponseStream = types.ActionBlockResponseStream
)

// SafeRiskCode is the classifier code for content that carries no risk.
const SafeRiskCode = types.SafeCode

// DefaultChatModel is sent when a chat request leaves Model empty.
const DefaultChatModel = types.DefaultChatModel

// DefaultLogLimit is the page size used by ListLogs when limit <= 0.
const DefaultLogLimit = api.DefaultLogLimit

// Risks lists every category the gateway can block.
func Risks() []Risk {
	out := make([]Risk, len(types.Risks))
	copy(out, types.Risks)
	return out
}

// RiskName returns the display name for a risk code.
func RiskName(code string) string { return types.RiskName(code) }

// ParseVerdict decodes "BLOCKED:<code>:<score>" content returned for a
// refused turn; ok is false for ordinary content.
func ParseVerdict(content string) (Verdict, bool) { return types.ParseVerdict(content) }
