package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b := dsl.New()
	b.Viewport("main").Viewport("side")
	b.Route("", "inbox")
	b.Component("inbox")
	b.Component("message")
	reg, err := b.Build()
	require.NoError(t, err)

	mgr := session.NewManager(memory.NewStore(), func(loc ports.Location) (*runtime.Router, error) {
		return runtime.NewRouter(reg,
			runtime.WithViewports(b.Viewports()...),
			runtime.WithRoutes(b.Routes()...),
			runtime.WithLocation(loc),
		)
	})
	t.Cleanup(mgr.Close)
	return NewServer(mgr)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestServer_NavigateAndHistory(t *testing.T) {
	s := newTestServer(t)
	ctx := testCtx(t)

	snap, err := s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{Route: "inbox@main"})
	require.NoError(t, err)
	require.NotEmpty(t, snap.SessionID)
	assert.Equal(t, "/inbox@main", snap.URL)

	snap, err = s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{
		SessionID: snap.SessionID,
		Route:     "inbox@main+message(3)@side",
	})
	require.NoError(t, err)
	assert.True(t, snap.Navigated)
	assert.Equal(t, 2, snap.Length)

	back, err := s.handleHistory(ctx, mcp.CallToolRequest{}, HistoryArgs{SessionID: snap.SessionID, Direction: "back"})
	require.NoError(t, err)
	assert.Equal(t, 0, back.Index)

	_, err = s.handleHistory(ctx, mcp.CallToolRequest{}, HistoryArgs{SessionID: snap.SessionID, Direction: "sideways"})
	assert.Error(t, err)
}

func TestServer_NavigateReplace(t *testing.T) {
	s := newTestServer(t)
	ctx := testCtx(t)

	snap, err := s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{Route: "inbox@main"})
	require.NoError(t, err)

	snap, err = s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{
		SessionID:       snap.SessionID,
		Route:           "message(1)@main",
		HistoryStrategy: string(domain.HistoryReplace),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Length)
	assert.Equal(t, "/message(1)@main", snap.URL)
}

func TestServer_RouteTree(t *testing.T) {
	s := newTestServer(t)
	ctx := testCtx(t)

	snap, err := s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{Route: "inbox@main+message(3)@side"})
	require.NoError(t, err)

	res, err := s.handleRouteTree(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: snap.SessionID})
	require.NoError(t, err)
	assert.Contains(t, res.Outline, "main: inbox")
	assert.Contains(t, res.Outline, "side: message(3)")
	require.Len(t, res.Nodes, 2)
	assert.Equal(t, "side", res.Nodes[1].Viewport)
	assert.Equal(t, "message", res.Nodes[1].Component)
	assert.Equal(t, "3", res.Nodes[1].Params["0"])

	_, err = s.handleRouteTree(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_ParseRoute(t *testing.T) {
	s := newTestServer(t)

	d, err := s.handleParse(context.Background(), mcp.CallToolRequest{}, ParseArgs{Route: "a/(b+c)"})
	require.NoError(t, err)
	assert.Equal(t, "/a/(b+c)", d.URL)
	require.Len(t, d.Instructions, 3)
	assert.Equal(t, "a", d.Instructions[0].Component)
	assert.Equal(t, 0, d.Instructions[0].Depth)
	assert.Equal(t, 1, d.Instructions[1].Depth)
	assert.Equal(t, 1, d.Instructions[2].Depth)

	_, err = s.handleParse(context.Background(), mcp.CallToolRequest{}, ParseArgs{Route: "a("})
	assert.Error(t, err)
}

func TestServer_SessionsResource(t *testing.T) {
	s := newTestServer(t)
	ctx := testCtx(t)

	snap, err := s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{Route: "inbox@main"})
	require.NoError(t, err)

	contents, err := s.readSessions(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SessionsURI, text.URI)
	assert.JSONEq(t, `["`+snap.SessionID+`"]`, text.Text)
}

func TestNewServer_ListsTools(t *testing.T) {
	s := newTestServer(t)

	tools := s.mcpServer.ListTools()
	for _, name := range []string{"navigate", "history", "parse_route", "route_tree"} {
		st, ok := tools[name]
		require.True(t, ok, name)
		assert.Equal(t, "object", st.Tool.OutputSchema.Type, name)
		assert.Contains(t, st.Tool.OutputSchema.Properties, "url", name)

		b, err := json.Marshal(st.Tool)
		require.NoError(t, err, name)
		assert.Contains(t, string(b), `"outputSchema"`, name)
	}
}

func TestServer_SnapshotNodesAreFlat(t *testing.T) {
	s := newTestServer(t)
	ctx := testCtx(t)

	snap, err := s.handleNavigate(ctx, mcp.CallToolRequest{}, NavigateArgs{Route: "inbox@main+message(3)@side"})
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, "main", snap.Nodes[0].Viewport)
	assert.Equal(t, "inbox", snap.Nodes[0].Component)
	assert.Equal(t, 0, snap.Nodes[1].Depth)

	b, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"children"`)
}
