package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/gatewaytest"
	"github.com/HandSonic/LLM-Security-Gateway/router"
)

func init() { color.NoColor = true }

// run executes guardctl against the gateway and returns stdout.
func run(t *testing.T, g *gatewaytest.Gateway, args ...string) (string, error) {
	t.Helper()
	if g != nil {
		t.Setenv("GUARD_GATEWAY_ORIGIN", g.URL)
	}
	out := &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_PoliciesListFormats(t *testing.T) {
	g := gatewaytest.New()
	defer g.Close()

	out, err := run(t, g, "policies", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "Dangerous Weapons")

	out, err = run(t, g, "policies", "list", "-o", "json")
	require.NoError(t, err)
	var policies []client.SecurityPolicy
	require.NoError(t, json.Unmarshal([]byte(out), &policies))
	assert.Len(t, policies, len(client.Risks()))

	out, err = run(t, g, "policies", "list", "--output", "yaml")
	require.NoError(t, err)
	var asYAML []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &asYAML))
	assert.Len(t, asYAML, len(client.Risks()))
}

func TestCLI_PoliciesUpdateByCodeAndID(t *testing.T) {
	g := gatewaytest.New()
	defer g.Close()

	_, err := run(t, g, "policies", "update", "dw", "--threshold", "0.75")
	require.NoError(t, err)
	p, _ := g.Policy("dw")
	assert.Equal(t, 0.75, p.Threshold)
	assert.True(t, p.Enabled)

	_, err = run(t, g, "policies", "update", "1", "--enabled=false")
	require.NoError(t, err)
	pc, _ := g.Policy("pc")
	assert.False(t, pc.Enabled)
	assert.Equal(t, gatewaytest.DefaultThreshold, pc.Threshold)

	out, err := run(t, g, "policies", "list", "--enabled-only", "-o", "json")
	require.NoError(t, err)
	var policies []client.SecurityPolicy
	require.NoError(t, json.Unmarshal([]byte(out), &policies))
	assert.Len(t, policies, len(client.Risks())-1)
}

func TestCLI_PoliciesUpdateErrors(t *testing.T) {
	g := gatewaytest.New()
	defer g.Close()

	_, err := run(t, g, "policies", "update", "dw")
	assert.ErrorContains(t, err, "nothing to update")

	_, err = run(t, g, "policies", "update", "zz", "--threshold", "0.3")
	assert.ErrorContains(t, err, "no policy matches")

	_, err = run(t, g, "policies", "update", "dw", "--threshold", "2")
	assert.ErrorIs(t, err, client.ErrInvalidRequest)
}

func TestCLI_ChatAndLogsAndStats(t *testing.T) {
	g := gatewaytest.New()
	defer g.Close()
	g.AddTrigger(gatewaytest.Trigger{Keyword: "grenade", Category: "dw", Score: 0.97})

	out, err := run(t, g, "chat", "hello", "gateway")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello gateway\n", out)

	out, err = run(t, g, "chat", "--stream", "stream", "this")
	require.NoError(t, err)
	assert.Equal(t, "echo: stream this\n", out)

	out, err = run(t, g, "chat", "grenade", "-o", "json")
	require.NoError(t, err)
	var res chatResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Blocked)
	require.NotNil(t, res.Verdict)
	assert.Equal(t, "dw", res.Verdict.Category)

	out, err = run(t, g, "chat", "--stream", "grenade")
	require.NoError(t, err)
	assert.Contains(t, out, "blocked: Dangerous Weapons (dw) score 0.9700")

	out, err = run(t, g, "logs", "--blocked", "-o", "json")
	require.NoError(t, err)
	var logs []client.AuditLog
	require.NoError(t, json.Unmarshal([]byte(out), &logs))
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, client.ActionBlockPrompt, l.Action)
	}

	out, err = run(t, g, "logs", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(strings.TrimSpace(out), "\n")+1)

	out, err = run(t, g, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "total_requests    4")
	assert.Contains(t, out, "50.0%")
}

func TestCLI_GatewayErrorsSurface(t *testing.T) {
	g := gatewaytest.New()
	defer g.Close()
	g.FailWith(http.StatusBadGateway, "upstream down")

	_, err := run(t, g, "stats")
	require.Error(t, err)
	assert.True(t, client.IsHTTP(err))
	assert.Equal(t, http.StatusBadGateway, client.StatusCode(err))

	g.FailWith(0, "")
	g.SetDelay(time.Second)
	_, err = run(t, g, "stats", "--timeout", "50ms")
	assert.True(t, client.IsTimeout(err), "got %v", err)
}

func TestCLI_Routes(t *testing.T) {
	out, err := run(t, nil, "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "对话游乐场")
	assert.Contains(t, out, "/policy")

	out, err = run(t, nil, "routes", "/chat/?x=1", "--base", "/", "-o", "json")
	require.NoError(t, err)
	var infos []routeInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, routeInfo{Path: "/chat", Name: "对话游乐场", View: "Chat", Href: "/chat"}, infos[0])

	_, err = run(t, nil, "routes", "/nope")
	assert.ErrorIs(t, err, router.ErrNotFound)

	t.Setenv("GUARD_BASE_PATH", "/console")
	out, err = run(t, nil, "routes", "/console/policy", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "href: /console/policy")
}

func TestCLI_Wait(t *testing.T) {
	g := gatewaytest.New()
	defer g.Close()

	out, err := run(t, g, "wait", "--max-wait", "2s")
	require.NoError(t, err)
	assert.Contains(t, out, "gateway ready")

	g.FailWith(http.StatusServiceUnavailable, "starting")
	go func() {
		time.Sleep(300 * time.Millisecond)
		g.FailWith(0, "")
	}()
	_, err = run(t, g, "wait", "--max-wait", "5s")
	require.NoError(t, err)

	g.FailWith(http.StatusServiceUnavailable, "down")
	_, err = run(t, g, "wait", "--max-wait", "300ms")
	assert.True(t, client.IsHTTP(err), "got %v", err)
}

func TestCLI_InvalidOutputFormat(t *testing.T) {
	_, err := run(t, nil, "routes", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}
