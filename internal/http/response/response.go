package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// MapError resolves a service error to its HTTP status and reason code.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, chat.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, chat.ErrInvalidContext):
		return http.StatusUnprocessableEntity, "INVALID_CONTEXT"
	case errors.Is(err, chat.ErrInvalidMessage):
		return http.StatusUnprocessableEntity, "INVALID_MESSAGE"
	case errors.Is(err, chat.ErrThreadNotActive):
		return http.StatusConflict, "THREAD_NOT_ACTIVE"
	case errors.Is(err, chat.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, chat.ErrActionNotApplicable):
		return http.StatusConflict, "ACTION_NOT_APPLICABLE"
	case errors.Is(err, chat.ErrUnknownAction):
		return http.StatusBadRequest, "UNKNOWN_ACTION"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// RespondServiceError maps err and writes the envelope in one step.
func RespondServiceError(c *gin.Context, err error) {
	status, code := MapError(err)
	RespondError(c, status, code, err)
}
