package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/feedbackportal/pkg/apperror"
	"anoa.com/feedbackportal/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	idStr, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns uuid.Nil for anonymous callers.
func OptionalUserID(c *gin.Context) uuid.UUID {
	userID, err := GetUserID(c)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, log *zap.Logger, err error) {
	code := apperror.MapErrorToStatus(err)

	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	// Log internal errors
	if code == http.StatusInternalServerError && log != nil {
		log.Error("internal error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = apperror.ErrInternal.Error()
	}

	c.JSON(code, gin.H{"error": message, "kind": apperror.Kind(err)})
}

// BadRequest reports a binding failure.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "kind": apperror.Kind(apperror.ErrBadRequest)})
}
