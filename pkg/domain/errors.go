package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is to test for a kind and errors.As to reach the typed
// carrier (RegistrationError, ResolutionError, ExecutionError) for its fields.
var (
	// ErrDuplicateProvider is returned when two annotators claim the same view name.
	ErrDuplicateProvider = errors.New("duplicate view provider")

	// ErrUnsatisfiedDependency is returned when an annotator is registered before its prerequisites.
	ErrUnsatisfiedDependency = errors.New("unsatisfied dependency")

	// ErrInvalidAnnotator is returned for nil annotators or annotators without a view name.
	ErrInvalidAnnotator = errors.New("invalid annotator")

	// ErrUnresolvableView is returned when a requested or prerequisite view has no provider.
	ErrUnresolvableView = errors.New("unresolvable view")

	// ErrCyclicDependency is returned when prerequisite expansion revisits a view on the current path.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrAnnotatorFailed is matched by every ExecutionError.
	ErrAnnotatorFailed = errors.New("annotator failed")

	// ErrAnnotatorPanic is the cause recorded when an annotator panics.
	ErrAnnotatorPanic = errors.New("annotator panicked")

	// ErrDocumentNotFound is returned by document stores when a key is unknown.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentExists is returned when creating a document whose key is already stored.
	ErrDocumentExists = errors.New("document already exists")
)

// RegistrationError describes why an annotator could not be registered.
type RegistrationError struct {
	Kind      error
	View      string
	Annotator string
	Missing   []string
	Existing  string
}

func (e *RegistrationError) Error() string {
	switch {
	case e.Existing != "":
		return fmt.Sprintf("register %s (view %q): %v: already provided by %s", e.Annotator, e.View, e.Kind, e.Existing)
	case len(e.Missing) > 0:
		return fmt.Sprintf("register %s (view %q): %v: %s", e.Annotator, e.View, e.Kind, strings.Join(e.Missing, ", "))
	case e.View != "":
		return fmt.Sprintf("register %s (view %q): %v", e.Annotator, e.View, e.Kind)
	default:
		return fmt.Sprintf("register %s: %v", e.Annotator, e.Kind)
	}
}

// Is matches the error kind.
func (e *RegistrationError) Is(target error) bool { return target == e.Kind }

// ResolutionError describes a failure to build an execution plan.
// Path is the prerequisite chain from the requested view down to View.
type ResolutionError struct {
	Kind      error
	View      string
	Requested string
	Path      []string
}

func (e *ResolutionError) Error() string {
	if len(e.Path) > 1 {
		return fmt.Sprintf("resolve %q: %v: %s", e.Requested, e.Kind, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("resolve %q: %v: %q", e.Requested, e.Kind, e.View)
}

// Is matches the error kind.
func (e *ResolutionError) Is(target error) bool { return target == e.Kind }

// ExecutionError reports an annotator that failed while running a plan.
// Annotator and View identify the failed step; Requested is the view the caller asked for.
type ExecutionError struct {
	Annotator string
	View      string
	Requested string
	Err       error
}

func (e *ExecutionError) Error() string {
	if e.PrerequisiteFailed() {
		return fmt.Sprintf("annotator %s failed producing prerequisite %q of %q: %v", e.Annotator, e.View, e.Requested, e.Err)
	}
	return fmt.Sprintf("annotator %s failed producing %q: %v", e.Annotator, e.View, e.Err)
}

// Is makes every ExecutionError match ErrAnnotatorFailed.
func (e *ExecutionError) Is(target error) bool { return target == ErrAnnotatorFailed }

// Unwrap exposes the annotator's own error.
func (e *ExecutionError) Unwrap() error { return e.Err }

// PrerequisiteFailed reports whether the failing step was a prerequisite rather than
// the requested view itself.
func (e *ExecutionError) PrerequisiteFailed() bool { return e.View != e.Requested }
