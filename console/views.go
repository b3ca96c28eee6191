package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/router"
)

const timeLayout = "2006-01-02 15:04:05"

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// ------------------------------
// Dashboard
// ------------------------------

type dashboardView struct{ c *Console }

type dashboardData struct {
	Stats client.Stats
	Rows  []logRow
}

type logRow struct {
	ID       int
	Time     string
	Input    string
	Response string
	Action   string
	Blocked  bool
	Risk     string
	Score    string
	Latency  string
}

func (v *dashboardView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	ctx := r.Context()
	stats, err := v.c.gw.GetStats(ctx)
	if err != nil {
		v.c.fail(w, r, "dashboard", err, nil)
		return
	}
	logs, err := v.c.gw.ListLogs(ctx, v.c.logLimit)
	if err != nil {
		v.c.fail(w, r, "dashboard", err, nil)
		return
	}
	data := dashboardData{Stats: *stats, Rows: make([]logRow, 0, len(logs))}
	for _, l := range logs {
		data.Rows = append(data.Rows, newLogRow(l))
	}
	v.c.pages.render(w, r, http.StatusOK, "dashboard", v.c.frame(r, "", data))
}

func newLogRow(l client.AuditLog) logRow {
	row := logRow{
		ID:      l.ID,
		Time:    l.Timestamp.Local().Format(timeLayout),
		Input:   l.UserInput,
		Action:  l.Action,
		Blocked: l.Blocked(),
		Latency: fmt.Sprintf("%.0f ms", l.LatencyMS),
	}
	if l.ModelResponse != nil {
		row.Response = *l.ModelResponse
	}
	if code, score, ok := topRisk(l.RiskDetails); ok {
		row.Risk = client.RiskName(code)
		row.Score = fmt.Sprintf("%.4f", score)
	} else if l.RiskScore != nil {
		row.Score = fmt.Sprintf("%.4f", *l.RiskScore)
	}
	return row
}

// topRisk picks the highest-scoring risk category from an audit row's
// risk_details object, ignoring the safe code.
func topRisk(details *string) (string, float64, bool) {
	if details == nil || *details == "" {
		return "", 0, false
	}
	var scores map[string]float64
	if err := json.Unmarshal([]byte(*details), &scores); err != nil {
		return "", 0, false
	}
	var (
		best  string
		score float64
	)
	for code, s := range scores {
		if code == client.SafeRiskCode {
			continue
		}
		if best == "" || s > score || (s == score && code < best) {
			best, score = code, s
		}
	}
	return best, score, best != ""
}

// ------------------------------
// Chat
// ------------------------------

type chatView struct{ c *Console }

type chatData struct {
	Model   string
	Turns   []chatTurn
	History string
	Draft   string
}

type chatTurn struct {
	Role    string
	Content string
	Blocked bool
	Risk    string
	Score   string
}

func newChatData(model string, history []client.ChatMessage, draft string) chatData {
	if model == "" {
		model = client.DefaultChatModel
	}
	d := chatData{Model: model, Draft: draft}
	for _, m := range history {
		t := chatTurn{Role: m.Role, Content: m.Content}
		if v, ok := client.ParseVerdict(m.Content); ok && m.Role == "assistant" {
			t.Blocked, t.Risk, t.Score = true, v.Name, fmt.Sprintf("%.4f", v.Score)
		}
		d.Turns = append(d.Turns, t)
	}
	b, _ := json.Marshal(history)
	d.History = string(b)
	return d
}

func (v *chatView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodHead, http.MethodPost) {
		return
	}
	if r.Method != http.MethodPost {
		v.c.pages.render(w, r, http.StatusOK, "chat", v.c.frame(r, "", newChatData("", nil, "")))
		return
	}

	if err := r.ParseForm(); err != nil {
		v.c.fail(w, r, "chat", fmt.Errorf("%w: %v", client.ErrInvalidRequest, err), newChatData("", nil, ""))
		return
	}
	model := strings.TrimSpace(r.PostForm.Get("model"))
	message := strings.TrimSpace(r.PostForm.Get("message"))
	var history []client.ChatMessage
	if raw := r.PostForm.Get("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			v.c.fail(w, r, "chat", fmt.Errorf("%w: malformed history: %v", client.ErrInvalidRequest, err), newChatData(model, nil, message))
			return
		}
	}
	if message == "" {
		v.c.fail(w, r, "chat", fmt.Errorf("%w: message is required", client.ErrInvalidRequest), newChatData(model, history, ""))
		return
	}

	turn := append(history, client.ChatMessage{Role: "user", Content: message})
	resp, err := v.c.gw.ChatCompletion(r.Context(), client.ChatCompletionRequest{Model: model, Messages: turn})
	if err != nil {
		v.c.fail(w, r, "chat", err, newChatData(model, history, message))
		return
	}
	content := resp.Content()
	if verdict, blocked := client.ParseVerdict(content); blocked {
		zerolog.Ctx(r.Context()).Info().
			Str("risk", verdict.Category).
			Float64("score", verdict.Score).
			Msg("chat turn blocked")
	}
	turn = append(turn, client.ChatMessage{Role: "assistant", Content: content})
	v.c.pages.render(w, r, http.StatusOK, "chat", v.c.frame(r, "", newChatData(model, turn, "")))
}

// ------------------------------
// Policy
// ------------------------------

type policyView struct{ c *Console }

type policyData struct {
	Policies []client.SecurityPolicy
}

func (v *policyView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodHead, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		v.update(w, r)
		return
	}
	policies, err := v.c.gw.ListPolicies(r.Context())
	if err != nil {
		v.c.fail(w, r, "policy", err, nil)
		return
	}
	f := v.c.frame(r, "", policyData{Policies: policies})
	if code := r.URL.Query().Get("updated"); code != "" {
		f.Notice = fmt.Sprintf("Policy %s (%s) saved.", code, client.RiskName(code))
	}
	v.c.pages.render(w, r, http.StatusOK, "policy", f)
}

func (v *policyView) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := policyFromForm(r)
	if err != nil {
		v.c.fail(w, r, "policy", err, nil)
		return
	}
	policies, err := v.c.gw.ListPolicies(ctx)
	if err != nil {
		v.c.fail(w, r, "policy", err, nil)
		return
	}
	for _, cur := range policies {
		if cur.ID == p.ID {
			p.RiskCategory, p.RiskName = cur.RiskCategory, cur.RiskName
			break
		}
	}
	updated, err := v.c.gw.UpdatePolicy(ctx, p)
	if err != nil {
		v.c.fail(w, r, "policy", err, policyData{Policies: policies})
		return
	}
	zerolog.Ctx(ctx).Info().
		Int("policy_id", updated.ID).
		Str("risk", updated.RiskCategory).
		Float64("threshold", updated.Threshold).
		Bool("enabled", updated.Enabled).
		Msg("policy updated")

	target := v.c.table.Location(router.PathPolicy) + "?updated=" + updated.RiskCategory
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func policyFromForm(r *http.Request) (client.SecurityPolicy, error) {
	if err := r.ParseForm(); err != nil {
		return client.SecurityPolicy{}, fmt.Errorf("%w: %v", client.ErrInvalidRequest, err)
	}
	id, err := strconv.Atoi(r.PostForm.Get("id"))
	if err != nil {
		return client.SecurityPolicy{}, fmt.Errorf("%w: policy id %q", client.ErrInvalidRequest, r.PostForm.Get("id"))
	}
	threshold, err := strconv.ParseFloat(r.PostForm.Get("threshold"), 64)
	if err != nil {
		return client.SecurityPolicy{}, fmt.Errorf("%w: threshold %q", client.ErrInvalidRequest, r.PostForm.Get("threshold"))
	}
	enabled := r.PostForm.Get("enabled")
	return client.SecurityPolicy{
		ID:        id,
		Threshold: threshold,
		Enabled:   enabled == "on" || enabled == "true",
	}, nil
}
