package runtime

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/guard"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/registry"
	"github.com/oklog/ulid/v2"
)

// Executor runs plans against documents.
type Executor struct {
	registry *registry.Registry
	guard    *guard.Manager
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	now      func() time.Time

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Option configures the Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithGuard replaces the per-document lock manager.
func WithGuard(g *guard.Manager) Option {
	return func(e *Executor) {
		if g != nil {
			e.guard = g
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExecutor creates an executor over reg. The registry is consulted live:
// every call snapshots it before resolving.
func NewExecutor(reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		registry: reg,
		guard:    guard.NewManager(),
		logger:   logging.NewNop(),
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the executor resolves against.
func (e *Executor) Registry() *registry.Registry {
	return e.registry
}

// Plan resolves requested against the present views of doc without running anything.
// With replace every view is planned, present or not.
func (e *Executor) Plan(doc *domain.Document, requested []string, replace bool) (*Plan, error) {
	return Resolve(e.registry.Snapshot(), requested, e.presence(doc, replace))
}

// Execute makes every requested view present on doc and reports whether the document's
// view set changed. With replace, every view in the plan is recomputed even when present.
//
// Execution stops at the first failing annotator. Views written before the failure stay
// on the document and the returned *domain.ExecutionError names the failed annotator and
// the requested view that pulled it in.
func (e *Executor) Execute(ctx context.Context, doc *domain.Document, requested []string, replace bool, cfg domain.RuntimeConfig) (bool, error) {
	var changed bool
	err := e.guard.WithLock(ctx, doc.Key(), func(ctx context.Context) error {
		before := doc.Generations()
		defer func() {
			changed = domain.Diff(doc.Key(), before, doc.Generations()) != nil
		}()

		snap := e.registry.Snapshot()
		plan, err := Resolve(snap, requested, e.presence(doc, replace))
		if err != nil {
			return err
		}
		return e.run(ctx, doc, snap, plan, replace, cfg)
	})
	return changed, err
}

func (e *Executor) presence(doc *domain.Document, replace bool) func(string) bool {
	if replace {
		return nil
	}
	return doc.HasView
}

func (e *Executor) run(ctx context.Context, doc *domain.Document, snap registry.Snapshot, plan *Plan, replace bool, cfg domain.RuntimeConfig) error {
	runID := e.newRunID()
	key := doc.Key()

	if e.hooks.OnPlan != nil {
		e.hooks.OnPlan(ctx, &domain.PlanEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventPlan, RunID: runID, DocumentKey: key},
			Requested: plan.Requested,
			Steps:     plan.Views(),
			Replace:   replace,
		})
	}
	e.logger.DebugContext(ctx, "plan resolved",
		"run_id", runID,
		"document", key,
		"requested", plan.Requested,
		"steps", plan.Views(),
	)

	for _, step := range plan.Steps {
		base := domain.EventBase{RunID: runID, DocumentKey: key}

		if !replace && doc.HasView(step.View) {
			if e.hooks.OnAnnotatorSkip != nil {
				base.Timestamp, base.Type = e.now(), domain.EventAnnotatorSkip
				e.hooks.OnAnnotatorSkip(ctx, &domain.AnnotatorEvent{
					EventBase: base, Annotator: step.Annotator, View: step.View, Requested: step.Requested,
				})
			}
			continue
		}

		a, _ := snap.Lookup(step.View)

		if e.hooks.OnAnnotatorStart != nil {
			base.Timestamp, base.Type = e.now(), domain.EventAnnotatorStart
			e.hooks.OnAnnotatorStart(ctx, &domain.AnnotatorEvent{
				EventBase: base, Annotator: a.Name(), View: step.View, Requested: step.Requested,
			})
		}

		start := e.now()
		payload, err := invoke(ctx, a, doc, cfg)
		elapsed := e.now().Sub(start)

		if e.hooks.OnAnnotatorFinish != nil {
			base.Timestamp, base.Type = e.now(), domain.EventAnnotatorFinish
			e.hooks.OnAnnotatorFinish(ctx, &domain.AnnotatorEvent{
				EventBase: base,
				Annotator: a.Name(),
				View:      step.View,
				Requested: step.Requested,
				Duration:  elapsed,
				Err:       err,
				IsError:   err != nil,
			})
		}

		if err != nil {
			e.logger.WarnContext(ctx, "annotator failed",
				"run_id", runID,
				"document", key,
				"annotator", a.Name(),
				"view", step.View,
				"requested", step.Requested,
				"err", err,
			)
			return &domain.ExecutionError{
				Annotator: a.Name(),
				View:      step.View,
				Requested: step.Requested,
				Err:       err,
			}
		}

		gen := doc.PutView(&domain.View{
			Name:      step.View,
			Producer:  a.Name(),
			RunID:     runID,
			CreatedAt: e.now(),
			Payload:   payload,
		})
		e.logger.DebugContext(ctx, "view stored",
			"run_id", runID,
			"document", key,
			"view", step.View,
			"generation", gen,
			"duration", elapsed,
		)
	}
	return nil
}

// invoke calls the annotator and turns a panic into an error.
func invoke(ctx context.Context, a ports.Annotator, doc *domain.Document, cfg domain.RuntimeConfig) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrAnnotatorPanic, r)
		}
	}()
	return a.Annotate(ctx, doc, cfg)
}

func (e *Executor) newRunID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}
