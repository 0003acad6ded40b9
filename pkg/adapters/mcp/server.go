package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing the known sessions.
const SessionsURI = "waypoint://sessions"

// Sessions is the part of session.Manager the MCP tools drive.
type Sessions interface {
	Create(ctx context.Context, initial string) (*session.Snapshot, error)
	Navigate(ctx context.Context, sessionID, target string, opts ...domain.NavigationOption) (*session.Snapshot, error)
	Back(ctx context.Context, sessionID string) (*session.Snapshot, error)
	Forward(ctx context.Context, sessionID string) (*session.Snapshot, error)
	State(ctx context.Context, sessionID string) (*session.Snapshot, error)
	List(ctx context.Context) ([]string, error)
}

var _ Sessions = (*session.Manager)(nil)

// NavigateArgs are the arguments of the navigate tool.
type NavigateArgs struct {
	SessionID       string `json:"session_id"`
	Route           string `json:"route"`
	HistoryStrategy string `json:"history_strategy"`
	Fragment        string `json:"fragment"`
}

// HistoryArgs are the arguments of the back and forward tools.
type HistoryArgs struct {
	SessionID string `json:"session_id"`
	Direction string `json:"direction"`
}

// ParseArgs are the arguments of the parse_route tool.
type ParseArgs struct {
	Route string `json:"route"`
	Hash  bool   `json:"hash"`
}

// SessionArgs select a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}


// Server exposes waypoint sessions as an MCP server.
type Server struct {
	sessions  Sessions
	parser    *expression.Parser
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithParser shares a route parser with the server.
func WithParser(p *expression.Parser) Option {
	return func(s *Server) { s.parser = p }
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		parser:    expression.NewParser(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("waypoint-mcp", strings.TrimSpace(waypoint.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Navigate a session to a route such as 'products/42' or 'list@main+detail(7)@side'. Omit session_id to start a new session."),
		mcp.WithString("route", mcp.Required(), mcp.Description("Route expression")),
		mcp.WithString("session_id", mcp.Description("Session to navigate (optional)")),
		mcp.WithString("history_strategy", mcp.Description("push, replace or none (optional)")),
		mcp.WithString("fragment", mcp.Description("URL fragment (optional)")),
		mcp.WithOutputSchema[SnapshotResult](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("history",
		mcp.WithDescription("Move a session back or forward in its history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("direction", mcp.Required(), mcp.Description("'back' or 'forward'")),
		mcp.WithOutputSchema[SnapshotResult](),
	), mcp.NewStructuredToolHandler(s.handleHistory))

	s.mcpServer.AddTool(mcp.NewTool("parse_route",
		mcp.WithDescription("Parse a route expression and show its normalized instructions without navigating."),
		mcp.WithString("route", mcp.Required(), mcp.Description("Route expression")),
		mcp.WithBoolean("hash", mcp.Description("Treat the fragment as the route")),
		mcp.WithOutputSchema[ParseResult](),
	), mcp.NewStructuredToolHandler(s.handleParse))

	s.mcpServer.AddTool(mcp.NewTool("route_tree",
		mcp.WithDescription("Show which component each viewport of a session currently hosts."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[RouteTreeResult](),
	), mcp.NewStructuredToolHandler(s.handleRouteTree))
}

func (s *Server) handleNavigate(ctx context.Context, _ mcp.CallToolRequest, args NavigateArgs) (SnapshotResult, error) {
	route, err := runner.SanitizeRoute(args.Route)
	if err != nil {
		s.logger.Warn("MCP navigate: input rejected", "err", err, "size", len(args.Route))
		return SnapshotResult{}, fmt.Errorf("input rejected: %w", err)
	}

	var snap *session.Snapshot
	if args.SessionID == "" {
		snap, err = s.sessions.Create(ctx, route)
	} else {
		var opts []domain.NavigationOption
		if args.HistoryStrategy != "" {
			opts = append(opts, domain.WithHistoryStrategy(domain.HistoryStrategy(args.HistoryStrategy)))
		}
		if args.Fragment != "" {
			opts = append(opts, domain.WithFragment(args.Fragment))
		}
		snap, err = s.sessions.Navigate(ctx, args.SessionID, route, opts...)
	}
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("navigate failed: %w", err)
	}
	return snapshotResult(snap), nil
}

func (s *Server) handleHistory(ctx context.Context, _ mcp.CallToolRequest, args HistoryArgs) (SnapshotResult, error) {
	var (
		snap *session.Snapshot
		err  error
	)
	switch args.Direction {
	case "back":
		snap, err = s.sessions.Back(ctx, args.SessionID)
	case "forward":
		snap, err = s.sessions.Forward(ctx, args.SessionID)
	default:
		return SnapshotResult{}, fmt.Errorf("unknown direction %q", args.Direction)
	}
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("history move failed: %w", err)
	}
	return snapshotResult(snap), nil
}

func (s *Server) handleParse(_ context.Context, _ mcp.CallToolRequest, args ParseArgs) (ParseResult, error) {
	route, err := runner.SanitizeRoute(args.Route)
	if err != nil {
		return ParseResult{}, fmt.Errorf("input rejected: %w", err)
	}
	d, err := instruction.Describe(s.parser, route, args.Hash)
	if err != nil {
		return ParseResult{}, err
	}
	return parseResult(d), nil
}

func (s *Server) handleRouteTree(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (RouteTreeResult, error) {
	snap, err := s.sessions.State(ctx, args.SessionID)
	if err != nil {
		return RouteTreeResult{}, err
	}
	res := RouteTreeResult{SessionID: snap.SessionID, URL: snap.URL, Nodes: nodeViews(snap.RouteTree)}
	if snap.RouteTree != nil {
		res.Outline = snap.RouteTree.String()
	}
	return res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Known navigation sessions",
		mcp.WithMIMEType("application/json"),
	), s.readSessions)
}

func (s *Server) readSessions(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
