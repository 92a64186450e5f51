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

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tokenize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PlanResponse is the structured result of plan_views.
type PlanResponse struct {
	Steps []strata.Step `json:"steps" jsonschema_description:"Annotator invocations in execution order"`
}

// AnnotateResponse is the structured result of annotate_text.
type AnnotateResponse struct {
	DocumentKey string         `json:"document_key" jsonschema_description:"corpus/doc key of the annotated document"`
	Tokens      []string       `json:"tokens" jsonschema_description:"Structural tokens"`
	Views       map[string]any `json:"views" jsonschema_description:"Payload of every view present after the call"`
	Error       string         `json:"error,omitempty" jsonschema_description:"Set when an annotator failed; views computed before it are still returned"`
}

// Server wraps a strata Service and exposes it as an MCP Server.
type Server struct {
	service   *strata.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(svc *strata.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service:   svc,
		logger:    logger,
		mcpServer: server.NewMCPServer("strata-mcp", strings.TrimSpace(strata.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
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

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_views
	s.mcpServer.AddTool(mcp.NewTool("list_views",
		mcp.WithDescription("List every view the pipeline can produce, with its annotator and prerequisites, in registration order."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.service.Registry().Entries())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: plan_views
	planTool := mcp.NewTool("plan_views",
		mcp.WithDescription("Show which annotators would run, in order, to produce the requested views. Nothing is executed."),
		mcp.WithArray("views", mcp.Description("View names to produce (all views when omitted)"), mcp.WithStringItems()),
		mcp.WithArray("present", mcp.Description("View names to treat as already present"), mcp.WithStringItems()),
		mcp.WithOutputSchema[PlanResponse](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlan))

	// TOOL: annotate_text
	annotateTool := mcp.NewTool("annotate_text",
		mcp.WithDescription("Tokenize text and compute the requested views over it."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw text, or HTML when html is true")),
		mcp.WithArray("views", mcp.Description("View names to produce (all views when omitted)"), mcp.WithStringItems()),
		mcp.WithBoolean("html", mcp.Description("Extract visible text from HTML first")),
		mcp.WithString("corpus_id", mcp.Description("Corpus identifier (optional)")),
		mcp.WithString("doc_id", mcp.Description("Document identifier (optional)")),
		mcp.WithOutputSchema[AnnotateResponse](),
	)
	s.mcpServer.AddTool(annotateTool, mcp.NewStructuredToolHandler(s.handleAnnotate))
}

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PlanResponse, error) {
	doc := domain.NewDocument(domain.DefaultCorpus, "", "", domain.Tokenization{})
	for _, v := range stringList(args["present"]) {
		doc.PutView(&domain.View{Name: v})
	}

	plan, err := s.service.Plan(ctx, doc, stringList(args["views"])...)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("plan failed: %w", err)
	}
	return PlanResponse{Steps: plan.Steps}, nil
}

func (s *Server) handleAnnotate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AnnotateResponse, error) {
	text, _ := args["text"].(string)
	corpusID, _ := args["corpus_id"].(string)
	docID, _ := args["doc_id"].(string)
	if docID == "" {
		docID = "mcp"
	}

	if isHTML, _ := args["html"].(bool); isHTML {
		extracted, err := tokenize.ExtractHTMLText(text)
		if err != nil {
			return AnnotateResponse{}, fmt.Errorf("html extraction failed: %w", err)
		}
		text = extracted
	}

	doc, err := s.service.CreateBasicDocument(ctx, corpusID, docID, text, nil)
	if err != nil {
		return AnnotateResponse{}, fmt.Errorf("tokenization failed: %w", err)
	}

	views := stringList(args["views"])
	if len(views) == 0 {
		views = s.service.AvailableViews()
	}

	resp := AnnotateResponse{
		DocumentKey: doc.Key(),
		Tokens:      doc.Tokens(),
	}
	if _, err := s.service.AddViews(ctx, doc, views, nil); err != nil {
		var execErr *domain.ExecutionError
		if !errors.As(err, &execErr) {
			return AnnotateResponse{}, err
		}
		s.logger.Warn("MCP annotate: annotator failed", "annotator", execErr.Annotator, "err", execErr.Err)
		resp.Error = err.Error()
	}

	resp.Views = make(map[string]any)
	for _, v := range doc.Views() {
		resp.Views[v.Name] = v.Payload
	}
	return resp, nil
}

// stringList accepts a JSON array or a comma separated string.
func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func (s *Server) registerResources() {
	// EXPOSE: strata://annotators
	s.mcpServer.AddResource(mcp.NewResource("strata://annotators", "Registered Annotators",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.service.Registry().Entries())
		if err != nil {
			return nil, fmt.Errorf("failed to encode annotators: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "strata://annotators",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: strata://graph
	s.mcpServer.AddResource(mcp.NewResource("strata://graph", "Annotator Dependency Graph",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "strata://graph",
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.service.Registry().Entries(), nil),
			},
		}, nil
	})
}
