package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/HandSonic/LLM-Security-Gateway/router"
)

// RouteHandler answers which console view a location renders.
type RouteHandler struct {
	table *router.Table[string]
}

func NewRouteHandler(t *router.Table[string]) *RouteHandler { return &RouteHandler{table: t} }

func (rh *RouteHandler) RegisterTools(s *server.MCPServer) error {
	resolve := mcp.NewTool("resolve_route",
		mcp.WithDescription("Resolve a console location (e.g. /chat) to its view; unknown locations are not found"),
		mcp.WithString("location", mcp.Required(), mcp.Description("Path as navigated, may include the history base and a query")),
	)
	s.AddTool(resolve, rh.handleResolve)
	return nil
}

func (rh *RouteHandler) handleResolve(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	log.Debug().Str("location", location).Msg("resolve_route invoked")

	r, err := rh.table.Resolve(location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("route not found: %v", err)), nil
	}
	return jsonResult(map[string]string{
		"path": r.Path,
		"name": r.Name,
		"view": r.View,
		"href": rh.table.Location(r.Path),
	})
}
