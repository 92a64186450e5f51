package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/strata/pkg/domain"
)

// Combine returns hooks that call every non-nil callback of each set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, s := range sets {
		s := s
		out.OnPlan = chainPlan(out.OnPlan, s.OnPlan)
		out.OnAnnotatorStart = chainAnnotator(out.OnAnnotatorStart, s.OnAnnotatorStart)
		out.OnAnnotatorFinish = chainAnnotator(out.OnAnnotatorFinish, s.OnAnnotatorFinish)
		out.OnAnnotatorSkip = chainAnnotator(out.OnAnnotatorSkip, s.OnAnnotatorSkip)
	}
	return out
}

func chainPlan(a, b func(context.Context, *domain.PlanEvent)) func(context.Context, *domain.PlanEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.PlanEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainAnnotator(a, b func(context.Context, *domain.AnnotatorEvent)) func(context.Context, *domain.AnnotatorEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.AnnotatorEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks logs plans and annotator runs. Failures are logged at error level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPlan: func(ctx context.Context, e *domain.PlanEvent) {
			logger.InfoContext(ctx, "plan",
				"run_id", e.RunID,
				"document", e.DocumentKey,
				"requested", e.Requested,
				"steps", e.Steps,
				"replace", e.Replace,
			)
		},
		OnAnnotatorFinish: func(ctx context.Context, e *domain.AnnotatorEvent) {
			if e.IsError {
				logger.ErrorContext(ctx, "annotator_failed",
					"run_id", e.RunID,
					"document", e.DocumentKey,
					"annotator", e.Annotator,
					"view", e.View,
					"requested", e.Requested,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "annotator_finish",
				"run_id", e.RunID,
				"document", e.DocumentKey,
				"annotator", e.Annotator,
				"view", e.View,
				"duration", e.Duration,
			)
		},
		OnAnnotatorSkip: func(ctx context.Context, e *domain.AnnotatorEvent) {
			logger.DebugContext(ctx, "annotator_skip",
				"run_id", e.RunID,
				"document", e.DocumentKey,
				"view", e.View,
			)
		},
	}
}
