package strata

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/strata/internal/runtime"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/guard"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/registry"
	"github.com/aretw0/strata/pkg/tokenize"
)

// Plan is the ordered list of annotator invocations a call would make.
type Plan = runtime.Plan

// Step is one entry of a Plan.
type Step = runtime.Step

// Service is the high-level entry point for Strata.
// It owns a Registry and wraps the executor with a simplified API for consumers.
type Service struct {
	registry *registry.Registry
	builder  ports.TokenizationBuilder
	executor *runtime.Executor
	guard    *guard.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	pipeline string
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTokenizer replaces the default tokenization builder.
func WithTokenizer(b ports.TokenizationBuilder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// WithRegistry uses an existing registry, e.g. one produced by registry.Build.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithGuard shares a per-document lock manager with other components, such as an
// HTTP handler that loads and saves documents around annotation calls.
func WithGuard(g *guard.Manager) Option {
	return func(s *Service) {
		s.guard = g
	}
}

// WithLocker enables distributed per-document locking.
// Ignored when WithGuard is also given.
func WithLocker(l ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithName labels the pipeline in log output.
func WithName(name string) Option {
	return func(s *Service) {
		s.pipeline = name
	}
}

// New creates a Service. Without WithRegistry it starts with an empty registry;
// annotators are then added with AddAnnotator.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.pipeline != "" {
		s.logger = s.logger.With("pipeline", s.pipeline)
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.builder == nil {
		s.builder = tokenize.NewBuilder()
	}
	if s.guard == nil {
		s.guard = guard.NewManager(
			guard.WithLocker(s.locker),
			guard.WithTTL(s.lockTTL),
			guard.WithLogger(s.logger),
		)
	}

	s.executor = runtime.NewExecutor(s.registry,
		runtime.WithGuard(s.guard),
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
	)
	return s
}

// Registry exposes the service registry for inspection.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Guard exposes the per-document lock manager.
func (s *Service) Guard() *guard.Manager {
	return s.guard
}

// AddAnnotator registers a. It fails with domain.ErrDuplicateProvider or
// domain.ErrUnsatisfiedDependency and leaves the registry unchanged on failure.
func (s *Service) AddAnnotator(a ports.Annotator) error {
	if err := s.registry.Register(a); err != nil {
		return err
	}
	s.logger.Debug("annotator registered", "annotator", a.Name(), "view", a.ViewName(), "prerequisites", a.Prerequisites())
	return nil
}

// AvailableViews returns every view name the registry can produce, in registration order.
func (s *Service) AvailableViews() []string {
	return s.registry.Available()
}

// CreateBasicDocument builds a document with no views. A nil tok lets the builder
// tokenize text itself. Builder errors are returned unmodified.
func (s *Service) CreateBasicDocument(ctx context.Context, corpusID, docID, text string, tok *domain.Tokenization) (*domain.Document, error) {
	return s.builder.Build(ctx, corpusID, docID, text, tok)
}

// CreateAnnotatedDocument builds a document and adds views to it.
// A nil views adds every available view; an empty non-nil slice adds none.
func (s *Service) CreateAnnotatedDocument(ctx context.Context, corpusID, docID, text string, tok *domain.Tokenization, views []string) (*domain.Document, error) {
	doc, err := s.CreateBasicDocument(ctx, corpusID, docID, text, tok)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = s.AvailableViews()
	}
	if _, err := s.AddViews(ctx, doc, views, nil); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddView makes viewName present on doc, running any missing prerequisites first.
// It returns true when the document's view set changed.
func (s *Service) AddView(ctx context.Context, doc *domain.Document, viewName string, cfg domain.RuntimeConfig) (bool, error) {
	return s.executor.Execute(ctx, doc, []string{viewName}, false, cfg)
}

// AddViews is the bulk form of AddView.
func (s *Service) AddViews(ctx context.Context, doc *domain.Document, views []string, cfg domain.RuntimeConfig) (bool, error) {
	if len(views) == 0 {
		return false, nil
	}
	return s.executor.Execute(ctx, doc, views, false, cfg)
}

// AnnotateDocument targets every available view. With replaceExisting each one is
// recomputed in dependency order; otherwise only absent views are computed.
func (s *Service) AnnotateDocument(ctx context.Context, doc *domain.Document, replaceExisting bool) (*domain.Document, error) {
	if _, err := s.executor.Execute(ctx, doc, s.AvailableViews(), replaceExisting, nil); err != nil {
		return doc, err
	}
	return doc, nil
}

// Plan resolves views against doc without running anything. A nil doc plans from
// an empty document; no views means every available view.
func (s *Service) Plan(ctx context.Context, doc *domain.Document, views ...string) (*Plan, error) {
	if len(views) == 0 {
		views = s.AvailableViews()
	}
	if doc == nil {
		doc = domain.NewDocument(domain.DefaultCorpus, "", "", domain.Tokenization{})
	}
	return s.executor.Plan(doc, views, false)
}
