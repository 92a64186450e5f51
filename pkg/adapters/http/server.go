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
	"sync"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/tokenize"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves a Service and its document store.
type Server struct {
	Service  *strata.Service
	Store    ports.DocumentStore
	Streams  *StreamManager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// NewServer creates a Server over svc and store.
func NewServer(svc *strata.Service, store ports.DocumentStore, opts ...Option) *Server {
	server := &Server{
		Service: svc,
		Store:   store,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger
	return server
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc *strata.Service, store ports.DocumentStore, opts ...Option) http.Handler {
	return NewServer(svc, store, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/views", s.GetViews)
	r.Get("/graph", s.GetGraph)
	r.Post("/plan", s.PostPlan)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.CreateDocument)
		r.Get("/{corpus}", s.ListDocuments)
		r.Route("/{corpus}/{doc}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Delete("/", s.DeleteDocument)
			r.Post("/views/{view}", s.AddView)
			r.Post("/annotate", s.Annotate)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateDocumentRequest is the body of POST /documents.
type CreateDocumentRequest struct {
	CorpusID     string               `json:"corpus_id"`
	DocID        string               `json:"doc_id"`
	Text         string               `json:"text"`
	HTML         bool                 `json:"html,omitempty"`
	Tokenization *domain.Tokenization `json:"tokenization,omitempty"`
	// Views to add right away. Omitted means every available view; [] means none.
	Views  *[]string            `json:"views,omitempty"`
	Config domain.RuntimeConfig `json:"config,omitempty"`
}

// PlanRequest is the body of POST /plan.
type PlanRequest struct {
	Views   []string `json:"views"`
	Present []string `json:"present,omitempty"`
}

// ViewRequest is the optional body of POST /documents/{corpus}/{doc}/views/{view}.
type ViewRequest struct {
	Config domain.RuntimeConfig `json:"config,omitempty"`
}

// ChangeResponse reports the effect of a mutation.
type ChangeResponse struct {
	Changed bool             `json:"changed"`
	Diff    *domain.ViewDiff `json:"diff,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Annotator string   `json:"annotator,omitempty"`
	View      string   `json:"view,omitempty"`
	Requested string   `json:"requested,omitempty"`
	Path      []string `json:"path,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":        "strata-http",
		"version":    strings.TrimSpace(strata.Version),
		"annotators": s.Service.Registry().Len(),
	})
}

// GetViews handles the GET /views request.
func (s *Server) GetViews(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Service.AvailableViews())
}

// GetGraph handles the GET /graph request. ?format=mermaid returns a flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	entries := s.Service.Registry().Entries()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, graph.GenerateMermaid(entries, nil))
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// PostPlan handles the POST /plan request. Nothing runs.
func (s *Server) PostPlan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	doc := domain.NewDocument(domain.DefaultCorpus, "", "", domain.Tokenization{})
	for _, v := range body.Present {
		doc.PutView(&domain.View{Name: v})
	}
	plan, err := s.Service.Plan(r.Context(), doc, body.Views...)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

// CreateDocument handles the POST /documents request.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var body CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	text := body.Text
	if body.HTML {
		extracted, err := tokenize.ExtractHTMLText(text)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		text = extracted
	}

	ctx := r.Context()
	doc, err := s.Service.CreateBasicDocument(ctx, body.CorpusID, body.DocID, text, body.Tokenization)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	views := s.Service.AvailableViews()
	if body.Views != nil {
		views = *body.Views
	}

	saved := false
	err = s.Service.Guard().WithLock(ctx, doc.Key(), func(ctx context.Context) error {
		switch _, err := s.Store.Load(ctx, doc.CorpusID, doc.DocID); {
		case err == nil:
			return fmt.Errorf("create %s: %w", doc.Key(), domain.ErrDocumentExists)
		case !errors.Is(err, domain.ErrDocumentNotFound):
			return err
		}

		_, runErr := s.Service.AddViews(ctx, doc, views, body.Config)
		var execErr *domain.ExecutionError
		if runErr != nil && !errors.As(runErr, &execErr) {
			return runErr
		}
		if err := s.Store.Save(ctx, doc); err != nil {
			return errors.Join(runErr, err)
		}
		saved = true
		return runErr
	})
	if saved {
		s.broadcast(doc.Key(), domain.Diff(doc.Key(), nil, doc.Generations()))
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	s.logger.Info("document created", "document", doc.Key(), "views", doc.ViewNames())
	s.writeJSON(w, http.StatusCreated, doc)
}

// ListDocuments handles the GET /documents/{corpus} request.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context(), chi.URLParam(r, "corpus"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetDocument handles the GET /documents/{corpus}/{doc} request.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Store.Load(r.Context(), chi.URLParam(r, "corpus"), chi.URLParam(r, "doc"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles the DELETE /documents/{corpus}/{doc} request.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	corpus, id := chi.URLParam(r, "corpus"), chi.URLParam(r, "doc")
	err := s.Service.Guard().WithLock(r.Context(), domain.DocumentKey(corpus, id), func(ctx context.Context) error {
		return s.Store.Delete(ctx, corpus, id)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddView handles the POST /documents/{corpus}/{doc}/views/{view} request.
func (s *Server) AddView(w http.ResponseWriter, r *http.Request) {
	var body ViewRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	view := chi.URLParam(r, "view")
	s.mutate(w, r, func(ctx context.Context, doc *domain.Document) error {
		_, err := s.Service.AddView(ctx, doc, view, body.Config)
		return err
	})
}

// Annotate handles the POST /documents/{corpus}/{doc}/annotate request.
// ?replace=true recomputes every view.
func (s *Server) Annotate(w http.ResponseWriter, r *http.Request) {
	replace := false
	if raw := r.URL.Query().Get("replace"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid replace flag: %w", err))
			return
		}
		replace = v
	}

	s.mutate(w, r, func(ctx context.Context, doc *domain.Document) error {
		_, err := s.Service.AnnotateDocument(ctx, doc, replace)
		return err
	})
}

// mutate runs fn on the stored document under the document guard and saves the
// result when its view set changed. Views written before a failure are kept.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, *domain.Document) error) {
	corpus, id := chi.URLParam(r, "corpus"), chi.URLParam(r, "doc")
	key := domain.DocumentKey(corpus, id)

	var diff *domain.ViewDiff
	err := s.Service.Guard().WithLock(r.Context(), key, func(ctx context.Context) error {
		doc, err := s.Store.Load(ctx, corpus, id)
		if err != nil {
			return err
		}
		before := doc.Generations()
		runErr := fn(ctx, doc)
		diff = domain.Diff(key, before, doc.Generations())
		if diff != nil {
			if err := s.Store.Save(ctx, doc); err != nil {
				return errors.Join(runErr, err)
			}
		}
		return runErr
	})

	if diff != nil {
		s.logger.Debug("document changed", "document", key, "diff", diff)
		s.broadcast(key, diff)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ChangeResponse{Changed: diff != nil, Diff: diff})
}

func (s *Server) broadcast(key string, diff *domain.ViewDiff) {
	if diff == nil {
		return
	}
	if bytes, err := json.Marshal(diff); err == nil {
		s.Streams.Broadcast(key, string(bytes))
	}
}

// SubscribeEvents handles the GET /documents/{corpus}/{doc}/events request (SSE).
// ?watch=NAME,NAME keeps only diffs touching those views.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	key := domain.DocumentKey(chi.URLParam(r, "corpus"), chi.URLParam(r, "doc"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()
	s.logger.Info("SSE: subscribed", "document", key)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	watch := make(map[string]bool)
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			watch[strings.TrimSpace(v)] = true
		}
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "document", key)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !touches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func touches(msg string, watch map[string]bool) bool {
	var diff domain.ViewDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return false
	}
	for _, group := range [][]string{diff.Added, diff.Replaced, diff.Removed} {
		for _, v := range group {
			if watch[v] {
				return true
			}
		}
	}
	return false
}

// fail maps engine and store errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var execErr *domain.ExecutionError
	var resErr *domain.ResolutionError
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDocumentExists):
		status = http.StatusConflict
	case errors.As(err, &resErr):
		status = http.StatusUnprocessableEntity
		if errors.Is(err, domain.ErrCyclicDependency) {
			status = http.StatusInternalServerError
		}
		resp.View, resp.Requested, resp.Path = resErr.View, resErr.Requested, resErr.Path
	case errors.As(err, &execErr):
		status = http.StatusBadGateway
		resp.Annotator, resp.View, resp.Requested = execErr.Annotator, execErr.View, execErr.Requested
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Warn("request rejected", "err", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("bad request", "err", err)
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections, keyed by document.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(key string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- string]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

// Subscribers returns the number of open streams for key.
func (sm *StreamManager) Subscribers(key string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[key])
}

func (sm *StreamManager) Broadcast(key string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[key] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping message", "document", key)
		}
	}
}
