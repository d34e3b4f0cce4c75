package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"glmdesign/domain/core"
)

func TestClassifyAndHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"nil", nil, "", http.StatusOK},
		{"config", core.NewConfigError("select[0].label", "cannot be empty"), CodeValidationError, http.StatusBadRequest},
		{"duplicate label", fmt.Errorf("%w: a", core.ErrDuplicateLabel), CodeValidationError, http.StatusBadRequest},
		{"interaction", core.NewInteractionError("ab", "needs at least 2 factors"), CodeValidationError, http.StatusBadRequest},
		{"lookup", core.NewLookupError("projection[0].space", "age"), CodeLookupFailed, http.StatusUnprocessableEntity},
		{"contrast", core.NewContrastError("age", "is not a column"), CodeLookupFailed, http.StatusUnprocessableEntity},
		{"not found", core.NewNotFoundError("design_run", "x"), CodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"plain", stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("ctx: %w", NotFound("run")), CodeNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Classify(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestWrapKeepsDomainClassification(t *testing.T) {
	err := Wrap(core.NewContrastError("age", "missing"), "prepare failed")
	assert.Equal(t, CodeLookupFailed, GetCode(err))
	assert.ErrorIs(t, err, core.ErrContrast)
	assert.Contains(t, err.Error(), "prepare failed")

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, CodeInternalError, GetCode(Wrapf(stderrors.New("x"), "step %d", 3)))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, stderrors.New("conn refused"))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}
