package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPlan            EventType = "plan"
	EventAnnotatorStart  EventType = "annotator_start"
	EventAnnotatorFinish EventType = "annotator_finish"
	EventAnnotatorSkip   EventType = "annotator_skip"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	RunID       string    `json:"run_id"`
	DocumentKey string    `json:"document_key"`
}

// PlanEvent is fired once a plan has been resolved, before any annotator runs.
type PlanEvent struct {
	EventBase
	Requested []string `json:"requested"`
	Steps     []string `json:"steps"`
	Replace   bool     `json:"replace,omitempty"`
}

// AnnotatorEvent describes a single plan step.
type AnnotatorEvent struct {
	EventBase
	Annotator string        `json:"annotator"`
	View      string        `json:"view"`
	Requested string        `json:"requested"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnPlan            func(context.Context, *PlanEvent)
	OnAnnotatorStart  func(context.Context, *AnnotatorEvent)
	OnAnnotatorFinish func(context.Context, *AnnotatorEvent)
	OnAnnotatorSkip   func(context.Context, *AnnotatorEvent)
}
