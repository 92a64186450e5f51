package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestExecutionError_Attribution(t *testing.T) {
	cause := errors.New("model not loaded")
	err := fmt.Errorf("add view: %w", &domain.ExecutionError{
		Annotator: "pos-tagger",
		View:      "POS",
		Requested: "CHUNK",
		Err:       cause,
	})

	assert.ErrorIs(t, err, domain.ErrAnnotatorFailed)
	assert.ErrorIs(t, err, cause)

	var execErr *domain.ExecutionError
	if assert.ErrorAs(t, err, &execErr) {
		assert.True(t, execErr.PrerequisiteFailed())
		assert.Contains(t, execErr.Error(), "prerequisite")
	}
}

func TestRegistrationError_Kind(t *testing.T) {
	err := &domain.RegistrationError{
		Kind:      domain.ErrUnsatisfiedDependency,
		View:      "POS",
		Annotator: "pos",
		Missing:   []string{"TOKENS"},
	}
	assert.ErrorIs(t, err, domain.ErrUnsatisfiedDependency)
	assert.NotErrorIs(t, err, domain.ErrDuplicateProvider)
	assert.Contains(t, err.Error(), "TOKENS")
}

func TestResolutionError_Path(t *testing.T) {
	err := &domain.ResolutionError{
		Kind:      domain.ErrUnresolvableView,
		View:      "LEMMA",
		Requested: "CHUNK",
		Path:      []string{"CHUNK", "POS", "LEMMA"},
	}
	assert.ErrorIs(t, err, domain.ErrUnresolvableView)
	assert.Contains(t, err.Error(), "CHUNK -> POS -> LEMMA")
}
