// Package mcp exposes the flow editor as an MCP server, so assistant tooling
// can open, edit, validate and preview flows over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/internal/presentation/graph"
	"github.com/zapflow/zapflow/internal/presentation/tui"
	"github.com/zapflow/zapflow/internal/validator"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/session"
	"github.com/zapflow/zapflow/pkg/wire"
)

// AppVersion is reported in the MCP handshake. The CLI stamps it from the
// release version at startup.
var AppVersion = "dev"

// EditResponse is the structured result of flow-mutating tools.
type EditResponse struct {
	FlowID string      `json:"flow_id" jsonschema_description:"The edited flow"`
	Spec   domain.Spec `json:"spec" jsonschema_description:"The flow state after the edit"`
	Issues []string    `json:"issues" jsonschema_description:"Validation issues remaining after the edit"`
}

// Server wraps the session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("zapflow-mcp", strings.TrimSpace(AppVersion)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate_flow
	s.mcpServer.AddTool(mcp.NewTool("validate_flow",
		mcp.WithDescription("Check a flow for problems the editor cannot repair automatically. Returns a list of human-readable issues; empty means the flow is save-able."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to validate")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flowID, _ := request.GetArguments()["flow_id"].(string)
		spec, err := s.sessions.LoadOrCreate(ctx, flowID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		issues := validator.Check(spec)
		jsonBytes, _ := json.Marshal(map[string][]string{"issues": issues})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: preview_flow
	s.mcpServer.AddTool(mcp.NewTool("preview_flow",
		mcp.WithDescription("Render a markdown preview of every screen of the flow, approximating the phone UI."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to preview")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flowID, _ := request.GetArguments()["flow_id"].(string)
		spec, err := s.sessions.LoadOrCreate(ctx, flowID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		return mcp.NewToolResultText(tui.FlowMarkdown(spec)), nil
	})

	// TOOL: flow_graph
	s.mcpServer.AddTool(mcp.NewTool("flow_graph",
		mcp.WithDescription("Get a Mermaid diagram of the flow's screens, default routes and branch rules."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to visualize")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flowID, _ := request.GetArguments()["flow_id"].(string)
		spec, err := s.sessions.LoadOrCreate(ctx, flowID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(spec, nil)), nil
	})

	// TOOL: next_screen_id
	s.mcpServer.AddTool(mcp.NewTool("next_screen_id",
		mcp.WithDescription("Compute the ID the next added screen would get (SCREEN_A, SCREEN_B, ..., SCREEN_AA)."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to inspect")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flowID, _ := request.GetArguments()["flow_id"].(string)
		spec, err := s.sessions.LoadOrCreate(ctx, flowID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		return mcp.NewToolResultText(engine.NewScreenID(spec.ScreenIDs())), nil
	})

	// TOOL: apply_edit
	editTool := mcp.NewTool("apply_edit",
		mcp.WithDescription("Apply one edit to a flow (add_screen, remove_screen, patch_screen, set_branches, set_default_next, set_terminal). The flow is re-normalized and validated afterwards."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to edit")),
		mcp.WithString("edit", mcp.Required(), mcp.Description("JSON object describing the edit")),
		mcp.WithOutputSchema[EditResponse](),
	)
	s.mcpServer.AddTool(editTool, mcp.NewStructuredToolHandler(s.handleApplyEdit))

	// TOOL: export_document
	s.mcpServer.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Export the flow as the wire-format JSON document consumed by the publishing pipeline."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to export")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flowID, _ := request.GetArguments()["flow_id"].(string)
		spec, err := s.sessions.LoadOrCreate(ctx, flowID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		out, err := wire.MarshalDocument(wire.Encode(spec))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	})
}

func (s *Server) handleApplyEdit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResponse, error) {
	flowID, _ := args["flow_id"].(string)
	editStr, _ := args["edit"].(string)

	var edit domain.Edit
	if err := json.Unmarshal([]byte(editStr), &edit); err != nil {
		return EditResponse{}, fmt.Errorf("invalid edit payload: %w", err)
	}

	spec, _, err := s.sessions.Edit(ctx, flowID, edit)
	if err != nil {
		return EditResponse{}, fmt.Errorf("edit failed: %w", err)
	}

	return EditResponse{
		FlowID: flowID,
		Spec:   spec,
		Issues: validator.Check(spec),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: zapflow://flows
	s.mcpServer.AddResource(mcp.NewResource("zapflow://flows", "Stored Flows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "zapflow://flows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
