package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("message: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"invalid rating", ErrInvalidRating, http.StatusBadRequest},
		{"missing target", ErrMissingTarget, http.StatusBadRequest},
		{"duplicate code", ErrDuplicateSubjectCode, http.StatusConflict},
		{"duplicate email", ErrDuplicateTeacherEmail, http.StatusConflict},
		{"empty body", ErrEmptyMessageBody, http.StatusBadRequest},
		{"explicit code wins", New(http.StatusTeapot, "tea", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestKind(t *testing.T) {
	err := Wrap(ErrInvalidSubjectCode, "subject code \"inf1343\" is invalid")

	assert.Equal(t, "invalid_subject_code", Kind(err))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatus(err))
	assert.Equal(t, "subject code \"inf1343\" is invalid", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidSubjectCode))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}

func TestAppErrorFallsBackToWrappedMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "", ErrEmptyMessageBody)
	assert.Equal(t, ErrEmptyMessageBody.Error(), err.Error())
}
