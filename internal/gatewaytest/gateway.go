// Package gatewaytest runs an in-process fake of the security gateway's
// /api surface for tests of the console, CLI and MCP hosts.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/api/respond"
)

// DefaultThreshold is the threshold seeded for every policy.
const DefaultThreshold = 0.5

// naiveLayout is how the gateway serialises audit timestamps (no zone).
const naiveLayout = "2006-01-02T15:04:05.999999"

// Trigger makes prompts containing Keyword score Score in Category.
type Trigger struct {
	Keyword  string
	Category string
	Score    float64
}

// Gateway is a fake gateway. The zero value is not usable; call New.
type Gateway struct {
	*httptest.Server

	mu        sync.Mutex
	policies  []client.SecurityPolicy
	logs      []client.AuditLog
	triggers  []Trigger
	requests  []string
	delay     time.Duration
	failCode  int
	failBody  string
	streamErr string
	reply     func(prompt string) string
	now       func() time.Time
}

// New starts a fake gateway with the 28 default policies seeded.
func New() *Gateway {
	g := &Gateway{
		reply: func(prompt string) string { return "echo: " + prompt },
		now:   time.Now,
	}
	for i, r := range client.Risks() {
		g.policies = append(g.policies, client.SecurityPolicy{
			ID:           i + 1,
			RiskCategory: r.Code,
			RiskName:     r.Name,
			Threshold:    DefaultThreshold,
			Enabled:      true,
		})
	}
	g.Server = httptest.NewServer(g.router())
	return g
}

func (g *Gateway) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(g.middleware)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/policies", g.listPolicies).Methods(http.MethodGet)
	api.HandleFunc("/policies/{id:[0-9]+}", g.updatePolicy).Methods(http.MethodPut)
	api.HandleFunc("/logs", g.listLogs).Methods(http.MethodGet)
	api.HandleFunc("/stats", g.stats).Methods(http.MethodGet)
	api.HandleFunc("/v1/chat/completions", g.chat).Methods(http.MethodPost)
	return r
}

func (g *Gateway) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests = append(g.requests, r.Method+" "+r.URL.Path)
		delay, code, body := g.delay, g.failCode, g.failBody
		g.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if code != 0 {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AddTrigger registers a keyword that scores prompts in a risk category.
func (g *Gateway) AddTrigger(t Trigger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.triggers = append(g.triggers, t)
}

// SetDelay delays every response.
func (g *Gateway) SetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delay = d
}

// FailWith makes every request answer status with body. Zero status clears it.
func (g *Gateway) FailWith(status int, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failCode, g.failBody = status, body
}

// FailStream makes streamed completions end with an error event.
func (g *Gateway) FailStream(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.streamErr = msg
}

// SetReply replaces the upstream model.
func (g *Gateway) SetReply(fn func(prompt string) string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reply = fn
}

// Requests returns "METHOD /path" for every request received.
func (g *Gateway) Requests() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requests...)
}

// Policy returns the stored policy for a risk code.
func (g *Gateway) Policy(code string) (client.SecurityPolicy, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.policies {
		if p.RiskCategory == code {
			return p, true
		}
	}
	return client.SecurityPolicy{}, false
}

// Logs returns the audit log, newest first.
func (g *Gateway) Logs() []client.AuditLog {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]client.AuditLog, 0, len(g.logs))
	for i := len(g.logs) - 1; i >= 0; i-- {
		out = append(out, g.logs[i])
	}
	return out
}

func (g *Gateway) listPolicies(w http.ResponseWriter, _ *http.Request) {
	g.mu.Lock()
	out := append([]client.SecurityPolicy(nil), g.policies...)
	g.mu.Unlock()
	respond.WriteJSON(w, http.StatusOK, out)
}

func (g *Gateway) updatePolicy(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var in client.SecurityPolicy
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.policies {
		if g.policies[i].ID == id {
			g.policies[i].Threshold = in.Threshold
			g.policies[i].Enabled = in.Enabled
			respond.WriteJSON(w, http.StatusOK, g.policies[i])
			return
		}
	}
	respond.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Policy not found"})
}

func (g *Gateway) listLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.WriteError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = n
	}
	logs := g.Logs()
	if limit >= 0 && limit < len(logs) {
		logs = logs[:limit]
	}
	out := make([]map[string]any, 0, len(logs))
	for _, l := range logs {
		out = append(out, wireLog(l))
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// wireLog renders a log the way the gateway does, with a naive timestamp.
func wireLog(l client.AuditLog) map[string]any {
	return map[string]any{
		"id":             l.ID,
		"timestamp":      l.Timestamp.UTC().Format(naiveLayout),
		"user_input":     l.UserInput,
		"model_response": l.ModelResponse,
		"risk_score":     l.RiskScore,
		"risk_details":   l.RiskDetails,
		"action":         l.Action,
		"latency_ms":     l.LatencyMS,
	}
}

func (g *Gateway) stats(w http.ResponseWriter, _ *http.Request) {
	g.mu.Lock()
	total, blocked := len(g.logs), 0
	for _, l := range g.logs {
		if l.Action != client.ActionAllow {
			blocked++
		}
	}
	g.mu.Unlock()
	rate := 0.0
	if total > 0 {
		rate = float64(blocked) / float64(total)
	}
	respond.WriteJSON(w, http.StatusOK, client.Stats{TotalRequests: total, BlockedRequests: blocked, BlockRate: rate})
}

func (g *Gateway) chat(w http.ResponseWriter, r *http.Request) {
	start := g.now()
	var req client.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	prompt := req.LastUserMessage()

	if code, score, blocked := g.check(prompt); blocked {
		g.record(prompt, nil, score, code, client.ActionBlockPrompt, start)
		respond.WriteJSON(w, http.StatusOK, g.completion(req.Model, verdictContent(code, score)))
		return
	}

	g.mu.Lock()
	answer := g.reply(prompt)
	streamErr := g.streamErr
	g.mu.Unlock()

	if req.Stream {
		g.stream(w, req.Model, answer, streamErr)
		g.record(prompt, &answer, 0, "", client.ActionAllow, start)
		return
	}
	g.record(prompt, &answer, 0, "", client.ActionAllow, start)
	respond.WriteJSON(w, http.StatusOK, g.completion(req.Model, answer))
}

func (g *Gateway) stream(w http.ResponseWriter, model, answer, streamErr string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	id := "chatcmpl-" + uuid.NewString()
	for _, word := range strings.SplitAfter(answer, " ") {
		chunk := client.ChatCompletionChunk{
			ID: id, Object: "chat.completion.chunk", Created: g.now().Unix(), Model: model,
		}
		chunk.Choices = []client.ChatCompletionChunkChoice{{Delta: client.ChatDelta{Content: word}}}
		b, _ := json.Marshal(chunk)
		_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	}
	if streamErr != "" {
		b, _ := json.Marshal(map[string]string{"error": streamErr})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
		return
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
}

// check mirrors the gateway's policy evaluation: the first enabled category
// whose score reaches its threshold blocks the turn.
func (g *Gateway) check(prompt string) (string, float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	scores := map[string]float64{}
	lower := strings.ToLower(prompt)
	for _, t := range g.triggers {
		if strings.Contains(lower, strings.ToLower(t.Keyword)) && t.Score > scores[t.Category] {
			scores[t.Category] = t.Score
		}
	}
	codes := make([]string, 0, len(scores))
	for c := range scores {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, code := range codes {
		for _, p := range g.policies {
			if p.RiskCategory == code && p.Enabled && scores[code] >= p.Threshold {
				return code, scores[code], true
			}
		}
	}
	return "", 0, false
}

func (g *Gateway) record(prompt string, answer *string, score float64, code, action string, start time.Time) {
	details := "{}"
	if code != "" {
		b, _ := json.Marshal(map[string]float64{code: score})
		details = string(b)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.logs = append(g.logs, client.AuditLog{
		ID:            len(g.logs) + 1,
		Timestamp:     now.UTC().Truncate(time.Microsecond),
		UserInput:     prompt,
		ModelResponse: answer,
		RiskScore:     &score,
		RiskDetails:   &details,
		Action:        action,
		LatencyMS:     float64(now.Sub(start).Microseconds()) / 1000,
	})
}

func (g *Gateway) completion(model, content string) client.ChatCompletionResponse {
	stop := "stop"
	return client.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: g.now().Unix(),
		Model:   model,
		Choices: []client.ChatCompletionChoice{{
			Message:      client.ChatMessage{Role: "assistant", Content: content},
			FinishReason: &stop,
		}},
	}
}

func verdictContent(code string, score float64) string {
	return fmt.Sprintf("BLOCKED:%s:%.4f", code, score)
}
