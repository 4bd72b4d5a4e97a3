package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrUnavailable       = errors.New("service unavailable")
)

// Review validation failures.
var (
	ErrInvalidRating         = errors.New("rating must be between 1 and 5 in steps of 0.5")
	ErrMissingTarget         = errors.New("at least one of subject or teacher is required")
	ErrInvalidSubjectCode    = errors.New("subject code must be 3 uppercase letters followed by 4 digits")
	ErrDuplicateSubjectCode  = errors.New("subject code already exists")
	ErrDuplicateTeacherEmail = errors.New("teacher email already exists")
	ErrEmptyMessageBody      = errors.New("message cannot be empty")
	ErrDuplicateUsername     = errors.New("username already taken")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap builds an AppError whose status comes from the sentinel it wraps.
func Wrap(err error, message string) *AppError {
	return New(MapErrorToStatus(err), message, err)
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateSubjectCode),
		errors.Is(err, ErrDuplicateTeacherEmail),
		errors.Is(err, ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrMissingTarget),
		errors.Is(err, ErrInvalidSubjectCode),
		errors.Is(err, ErrEmptyMessageBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	// Default to internal server error
	return http.StatusInternalServerError
}

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, "not_found"},
	{ErrUnauthorized, "unauthorized"},
	{ErrForbidden, "forbidden"},
	{ErrInvalidRating, "invalid_rating"},
	{ErrMissingTarget, "missing_target"},
	{ErrInvalidSubjectCode, "invalid_subject_code"},
	{ErrDuplicateSubjectCode, "duplicate_subject_code"},
	{ErrDuplicateTeacherEmail, "duplicate_teacher_email"},
	{ErrDuplicateUsername, "duplicate_username"},
	{ErrEmptyMessageBody, "empty_message_body"},
	{ErrRateLimitExceeded, "rate_limit_exceeded"},
	{ErrUnavailable, "unavailable"},
	{ErrBadRequest, "bad_request"},
	{ErrInvalidInput, "invalid_input"},
}

// Kind returns the stable failure kind clients switch on.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
