package types

import (
	"net/http"
	"net/url"
)

// ------------------------------
// Request Types
// ------------------------------

// Request is the generic request accepted by the client. Path is relative to
// the configured base URL; Body is JSON-encoded unless it is a []byte or string.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header map[string]string
}

// DefaultChatModel is used when a chat request leaves Model empty.
const DefaultChatModel = "gpt-3.5-turbo"

// ChatMessage is one OpenAI-style chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest mirrors the OpenAI chat completions request body.
type ChatCompletionRequest struct {
	Model            string             `json:"model"`
	Messages         []ChatMessage      `json:"messages"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	N                *int               `json:"n,omitempty"`
	Stream           bool               `json:"stream"`
	Stop             []string           `json:"stop,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float64 `json:"logit_bias,omitempty"`
	User             string             `json:"user,omitempty"`
}

// LastUserMessage returns the content of the most recent user turn.
func (r ChatCompletionRequest) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

// NewGet is shorthand for a bodiless GET request.
func NewGet(path string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: path, Query: query}
}
