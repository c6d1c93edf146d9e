package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/logging"
	"github.com/aretw0/folio/internal/presentation/graph"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/layout"
	"github.com/go-chi/chi/v5"
)

// Engine is the slice of the folio facade the HTTP adapter exposes.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, storyID string) (*domain.Story, error)
	Put(ctx context.Context, story *domain.Story) error
	Pages(ctx context.Context, storyID string) (map[string]int, error)
	Score(ctx context.Context, storyID, nodeID string) (folio.ScoreResult, error)
	Layout(ctx context.Context, storyID string, opts folio.LayoutOptions) ([]domain.Page, error)
	Delete(ctx context.Context, storyID, nodeID string) ([]string, error)
	Expand(ctx context.Context, storyID, nodeID, choiceID string) (*domain.Story, string, error)
	Inspect(ctx context.Context, storyID string) (domain.Report, error)
}

var _ Engine = (*folio.Engine)(nil)

// Server exposes an Engine as JSON endpoints.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares a StreamManager whose Hooks are installed on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts a metrics handler (typically promhttp.Handler()) on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Route("/stories", func(r chi.Router) {
		r.Get("/", server.ListStories)
		r.Route("/{storyID}", func(r chi.Router) {
			r.Get("/", server.GetStory)
			r.Put("/", server.PutStory)
			r.Get("/pages", server.GetPages)
			r.Get("/layout", server.GetLayout)
			r.Get("/graph", server.GetGraph)
			r.Get("/report", server.GetReport)
			r.Get("/events", server.SubscribeEvents)
			r.Get("/nodes/{nodeID}/score", server.GetScore)
			r.Delete("/nodes/{nodeID}", server.DeleteNode)
			r.Post("/nodes/{nodeID}/choices/{choiceID}/expand", server.Expand)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrStoryNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrChoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStartNodeProtected),
		errors.Is(err, domain.ErrChoiceResolved):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidStory):
		return http.StatusBadRequest
	case errors.Is(err, folio.ErrNoProducer):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug(op+" rejected", "path", r.URL.Path, "status", code, "err", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()}, s.logger)
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

// ListStories handles GET /stories.
func (s *Server) ListStories(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List(r.Context())
	if err != nil {
		s.fail(w, r, "List", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids, s.logger)
}

// GetStory handles GET /stories/{storyID}.
func (s *Server) GetStory(w http.ResponseWriter, r *http.Request) {
	story, err := s.Engine.Get(r.Context(), chi.URLParam(r, "storyID"))
	if err != nil {
		s.fail(w, r, "Get", err)
		return
	}
	writeJSON(w, http.StatusOK, story, s.logger)
}

// PutStory handles PUT /stories/{storyID}. The body ID, when set, must match the path.
func (s *Server) PutStory(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyID")

	var story domain.Story
	if err := json.NewDecoder(r.Body).Decode(&story); err != nil {
		s.fail(w, r, "Put", fmt.Errorf("%w: %v", domain.ErrInvalidStory, err))
		return
	}
	if story.ID == "" {
		story.ID = storyID
	}
	if story.ID != storyID {
		s.fail(w, r, "Put", fmt.Errorf("%w: body ID %q does not match path", domain.ErrInvalidStory, story.ID))
		return
	}

	if err := s.Engine.Put(r.Context(), &story); err != nil {
		s.fail(w, r, "Put", err)
		return
	}
	writeJSON(w, http.StatusOK, &story, s.logger)
}

// GetPages handles GET /stories/{storyID}/pages.
func (s *Server) GetPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.Engine.Pages(r.Context(), chi.URLParam(r, "storyID"))
	if err != nil {
		s.fail(w, r, "Pages", err)
		return
	}
	writeJSON(w, http.StatusOK, pages, s.logger)
}

// GetScore handles GET /stories/{storyID}/nodes/{nodeID}/score.
func (s *Server) GetScore(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Score(r.Context(), chi.URLParam(r, "storyID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		s.fail(w, r, "Score", err)
		return
	}
	writeJSON(w, http.StatusOK, res, s.logger)
}

// GetLayout handles GET /stories/{storyID}/layout?shuffle=&seed=&format=.
// format=markdown returns the rendered book instead of JSON pages.
func (s *Server) GetLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts folio.LayoutOptions

	if v := q.Get("shuffle"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, r, "Layout", fmt.Errorf("%w: shuffle: %v", domain.ErrInvalidStory, err))
			return
		}
		opts.Shuffle = b
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.fail(w, r, "Layout", fmt.Errorf("%w: seed: %v", domain.ErrInvalidStory, err))
			return
		}
		opts.Seed = &seed
	}

	pages, err := s.Engine.Layout(r.Context(), chi.URLParam(r, "storyID"), opts)
	if err != nil {
		s.fail(w, r, "Layout", err)
		return
	}

	if strings.EqualFold(q.Get("format"), "markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(layout.RenderBook(pages)))
		return
	}
	writeJSON(w, http.StatusOK, pages, s.logger)
}

// DeleteNode handles DELETE /stories/{storyID}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	removed, err := s.Engine.Delete(r.Context(), chi.URLParam(r, "storyID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		s.fail(w, r, "Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"removed": removed}, s.logger)
}

// GetGraph handles GET /stories/{storyID}/graph and returns a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	story, err := s.Engine.Get(r.Context(), chi.URLParam(r, "storyID"))
	if err != nil {
		s.fail(w, r, "Graph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(story, nil)))
}

// GetReport handles GET /stories/{storyID}/report.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.Engine.Inspect(r.Context(), chi.URLParam(r, "storyID"))
	if err != nil {
		s.fail(w, r, "Inspect", err)
		return
	}
	writeJSON(w, http.StatusOK, report, s.logger)
}

// Expand handles POST /stories/{storyID}/nodes/{nodeID}/choices/{choiceID}/expand.
func (s *Server) Expand(w http.ResponseWriter, r *http.Request) {
	story, nodeID, err := s.Engine.Expand(r.Context(),
		chi.URLParam(r, "storyID"),
		chi.URLParam(r, "nodeID"),
		chi.URLParam(r, "choiceID"),
	)
	if err != nil {
		s.fail(w, r, "Expand", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"node_id": nodeID,
		"node":    story.Node(nodeID),
	}, s.logger)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "folio-http",
		"version": strings.TrimSpace(folio.Version),
	}, s.logger)
}

// SubscribeEvents handles GET /stories/{storyID}/events (SSE).
// Every structural change and layout of the story is pushed as a JSON event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	storyID := chi.URLParam(r, "storyID")
	ch, cancel := s.Streams.Subscribe(storyID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Subscribed to story updates", "story_id", storyID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "story_id", storyID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
