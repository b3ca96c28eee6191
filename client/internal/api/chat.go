package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	apierrors "github.com/HandSonic/LLM-Security-Gateway/client/internal/errors"
	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

const chatPath = "/v1/chat/completions"

// ErrUpstream is returned when the gateway reports an upstream failure inside
// an otherwise successful event stream.
var ErrUpstream = errors.New("upstream error")

func normalizeChat(req types.ChatCompletionRequest, stream bool) (types.ChatCompletionRequest, error) {
	if err := types.ValidateChatRequest(req); err != nil {
		return req, err
	}
	if req.Model == "" {
		req.Model = types.DefaultChatModel
	}
	req.Stream = stream
	return req, nil
}

// ChatCompletion sends a non-streamed chat completion through the gateway.
func ChatCompletion(ctx context.Context, d Doer, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	req, err := normalizeChat(req, false)
	if err != nil {
		return nil, err
	}
	var out types.ChatCompletionResponse
	r := types.Request{Method: http.MethodPost, Path: chatPath, Body: req}
	if err := doJSON(ctx, d, "chat completion", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamChatCompletion sends a streamed chat completion and calls fn for each
// chunk. It returns the accumulated assistant content.
//
// A prompt refused before reaching the model comes back as a plain JSON
// completion even when streaming was requested; it is delivered to fn as a
// single chunk.
func StreamChatCompletion(ctx context.Context, s Streamer, req types.ChatCompletionRequest, fn func(types.ChatCompletionChunk) error) (string, error) {
	req, err := normalizeChat(req, true)
	if err != nil {
		return "", err
	}
	resp, err := s.Stream(ctx, types.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   req,
		Header: map[string]string{"Accept": "text/event-stream"},
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isEventStream(resp.Header.Get("Content-Type")) {
		var full types.ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&full); err != nil {
			return "", fmt.Errorf("chat completion: decode response: %w", err)
		}
		chunk := types.ChatCompletionChunk{
			ID: full.ID, Object: "chat.completion.chunk", Created: full.Created, Model: full.Model,
		}
		for _, c := range full.Choices {
			chunk.Choices = append(chunk.Choices, types.ChatCompletionChunkChoice{
				Index:        c.Index,
				Delta:        types.ChatDelta{Role: c.Message.Role, Content: c.Message.Content},
				FinishReason: c.FinishReason,
			})
		}
		if fn != nil {
			if err := fn(chunk); err != nil {
				return "", err
			}
		}
		return full.Content(), nil
	}

	var content strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}
		var chunk types.ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// the gateway forwards upstream lines verbatim; skip what it could not parse either
			continue
		}
		if chunk.Error != "" {
			return content.String(), fmt.Errorf("%w: %s", ErrUpstream, chunk.Error)
		}
		content.WriteString(chunk.Content())
		if fn != nil {
			if err := fn(chunk); err != nil {
				return content.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return content.String(), apierrors.FromTransport(http.MethodPost+" "+chatPath, err)
	}
	return content.String(), nil
}

func isEventStream(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/event-stream"
}
