package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
	"github.com/yungbote/socialfeed-backend/internal/platform/apierr"
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

// RespondServiceError maps a service error onto an HTTP status. An
// *apierr.Error wins; otherwise the sentinel decides and code is used as the
// fallback code for 500s.
func RespondServiceError(c *gin.Context, code string, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		aeCode := ae.Code
		if aeCode == "" {
			aeCode = code
		}
		RespondError(c, ae.Status, aeCode, ae)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperr.ErrForbidden):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, apperr.ErrAlreadyExists):
		RespondError(c, http.StatusConflict, "already_exists", err)
	default:
		if c.Request != nil && c.Request.Context().Err() != nil {
			RespondError(c, 499, "request_canceled", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, code, err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
