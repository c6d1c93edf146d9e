package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/logging"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/layout"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const storyURIPrefix = "folio://stories/"

// Engine defines the folio operations the MCP server exposes.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, storyID string) (*domain.Story, error)
	Pages(ctx context.Context, storyID string) (map[string]int, error)
	Score(ctx context.Context, storyID, nodeID string) (folio.ScoreResult, error)
	Layout(ctx context.Context, storyID string, opts folio.LayoutOptions) ([]domain.Page, error)
	Delete(ctx context.Context, storyID, nodeID string) ([]string, error)
	Expand(ctx context.Context, storyID, nodeID, choiceID string) (*domain.Story, string, error)
	Inspect(ctx context.Context, storyID string) (domain.Report, error)
}

var _ Engine = (*folio.Engine)(nil)

// ListResponse is the output of list_stories.
type ListResponse struct {
	Stories []string `json:"stories" jsonschema_description:"IDs of the stored stories"`
}

// PagesResponse is the output of page_numbers.
type PagesResponse struct {
	Pages map[string]int `json:"pages" jsonschema_description:"Logical page number per node; orphans follow the reachable pages"`
}

// LayoutResponse is the output of layout_book.
type LayoutResponse struct {
	Pages    int    `json:"pages" jsonschema_description:"Number of physical pages"`
	Markdown string `json:"markdown" jsonschema_description:"The rendered book"`
}

// DeleteResponse is the output of delete_node.
type DeleteResponse struct {
	Removed []string `json:"removed" jsonschema_description:"IDs of every deleted node"`
}

// ExpandResponse is the output of expand_choice.
type ExpandResponse struct {
	NodeID string       `json:"node_id" jsonschema_description:"ID of the new node"`
	Node   *domain.Node `json:"node" jsonschema_description:"The generated node"`
}

// Server wraps the folio Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("folio-mcp", strings.TrimSpace(folio.Version)),
		logger:    logging.NewNop(),
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

// ServeSSE serves the MCP protocol over SSE on port until ctx is done.
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
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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

func storyArg() mcp.ToolOption {
	return mcp.WithString("story_id", mcp.Required(), mcp.Description("The story ID"))
}

func nodeArg(desc string) mcp.ToolOption {
	return mcp.WithString("node_id", mcp.Required(), mcp.Description(desc))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_stories",
		mcp.WithDescription("List the IDs of all stored stories."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("page_numbers",
		mcp.WithDescription("Assign logical page numbers to every node: breadth-first from the start, then unreachable pages in id order."),
		storyArg(),
		mcp.WithOutputSchema[PagesResponse](),
	), mcp.NewStructuredToolHandler(s.handlePages))

	s.mcpServer.AddTool(mcp.NewTool("score_path",
		mcp.WithDescription("Tally outcome labels on the canonical path from the start to a node and report whether the story must end there."),
		storyArg(),
		nodeArg("The node to score"),
		mcp.WithOutputSchema[folio.ScoreResult](),
	), mcp.NewStructuredToolHandler(s.handleScore))

	s.mcpServer.AddTool(mcp.NewTool("layout_book",
		mcp.WithDescription("Paginate a story into physical pages and render it as Markdown."),
		storyArg(),
		mcp.WithBoolean("shuffle", mcp.Description("Shuffle node groups after the start page")),
		mcp.WithString("seed", mcp.Description("Unsigned integer seed for a reproducible shuffle")),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleLayout))

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node and every descendant reachable from it. The start node cannot be deleted."),
		storyArg(),
		nodeArg("The node to delete"),
		mcp.WithOutputSchema[DeleteResponse](),
	), mcp.NewStructuredToolHandler(s.handleDelete))

	s.mcpServer.AddTool(mcp.NewTool("expand_choice",
		mcp.WithDescription("Generate the page behind an unexplored choice and attach it to the story."),
		storyArg(),
		nodeArg("The node holding the choice"),
		mcp.WithString("choice_id", mcp.Required(), mcp.Description("The unexplored choice to follow")),
		mcp.WithOutputSchema[ExpandResponse](),
	), mcp.NewStructuredToolHandler(s.handleExpand))

	s.mcpServer.AddTool(mcp.NewTool("inspect_story",
		mcp.WithDescription("Report structural defects: dangling references, orphans and open stubs."),
		storyArg(),
		mcp.WithOutputSchema[domain.Report](),
	), mcp.NewStructuredToolHandler(s.handleInspect))

	s.mcpServer.AddTool(mcp.NewTool("get_story",
		mcp.WithDescription("Get the full story graph as JSON."),
		storyArg(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		storyID, _ := request.GetArguments()["story_id"].(string)
		story, err := s.engine.Get(ctx, storyID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(story)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ListResponse, error) {
	ids, err := s.engine.List(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ListResponse{Stories: ids}, nil
}

func (s *Server) handlePages(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PagesResponse, error) {
	storyID, err := stringArg(args, "story_id")
	if err != nil {
		return PagesResponse{}, err
	}
	pages, err := s.engine.Pages(ctx, storyID)
	if err != nil {
		return PagesResponse{}, fmt.Errorf("page numbering failed: %w", err)
	}
	return PagesResponse{Pages: pages}, nil
}

func (s *Server) handleScore(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (folio.ScoreResult, error) {
	storyID, err := stringArg(args, "story_id")
	if err != nil {
		return folio.ScoreResult{}, err
	}
	nodeID, err := stringArg(args, "node_id")
	if err != nil {
		return folio.ScoreResult{}, err
	}
	res, err := s.engine.Score(ctx, storyID, nodeID)
	if err != nil {
		return folio.ScoreResult{}, fmt.Errorf("scoring failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleLayout(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LayoutResponse, error) {
	storyID, err := stringArg(args, "story_id")
	if err != nil {
		return LayoutResponse{}, err
	}

	var opts folio.LayoutOptions
	opts.Shuffle, _ = args["shuffle"].(bool)
	if raw, _ := args["seed"].(string); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return LayoutResponse{}, fmt.Errorf("invalid seed: %w", err)
		}
		opts.Seed = &seed
	}

	pages, err := s.engine.Layout(ctx, storyID, opts)
	if err != nil {
		return LayoutResponse{}, fmt.Errorf("layout failed: %w", err)
	}
	return LayoutResponse{Pages: len(pages), Markdown: layout.RenderBook(pages)}, nil
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DeleteResponse, error) {
	storyID, err := stringArg(args, "story_id")
	if err != nil {
		return DeleteResponse{}, err
	}
	nodeID, err := stringArg(args, "node_id")
	if err != nil {
		return DeleteResponse{}, err
	}
	removed, err := s.engine.Delete(ctx, storyID, nodeID)
	if err != nil {
		return DeleteResponse{}, fmt.Errorf("delete failed: %w", err)
	}
	s.logger.Info("MCP: nodes deleted", "story_id", storyID, "count", len(removed))
	return DeleteResponse{Removed: removed}, nil
}

func (s *Server) handleExpand(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ExpandResponse, error) {
	storyID, err := stringArg(args, "story_id")
	if err != nil {
		return ExpandResponse{}, err
	}
	nodeID, err := stringArg(args, "node_id")
	if err != nil {
		return ExpandResponse{}, err
	}
	choiceID, err := stringArg(args, "choice_id")
	if err != nil {
		return ExpandResponse{}, err
	}
	story, newID, err := s.engine.Expand(ctx, storyID, nodeID, choiceID)
	if err != nil {
		return ExpandResponse{}, fmt.Errorf("expand failed: %w", err)
	}
	return ExpandResponse{NodeID: newID, Node: story.Node(newID)}, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Report, error) {
	storyID, err := stringArg(args, "story_id")
	if err != nil {
		return domain.Report{}, err
	}
	report, err := s.engine.Inspect(ctx, storyID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("inspect failed: %w", err)
	}
	return report, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("folio://stories", "Stored stories",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list stories: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "folio://stories",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(storyURIPrefix+"{id}", "Story graph",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readStory)
}

func (s *Server) readStory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	storyID := strings.TrimPrefix(uri, storyURIPrefix)
	story, err := s.engine.Get(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story %q: %w", storyID, err)
	}
	jsonBytes, _ := json.Marshal(story)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
