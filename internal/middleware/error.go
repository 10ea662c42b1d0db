package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/apperrors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Code  string `json:"code,omitempty"`
}

// ErrorHandler turns errors attached to the gin context into tagged JSON
// responses. Handlers report failures with c.Error and leave status selection
// here, so the kind-to-status mapping lives in exactly one place.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, resp := classifyError(err)
		log.Printf("[ErrorHandler] %s %s -> %d: %v", c.Request.Method, c.Request.URL.Path, status, err)

		if !c.Writer.Written() {
			c.JSON(status, resp)
		}
	}
}

// classifyError maps a tagged application error to an HTTP status and
// response body. Untagged errors are reported as opaque internal failures.
func classifyError(err error) (int, ErrorResponse) {
	appErr, ok := apperrors.As(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}

	resp := ErrorResponse{
		Error: appErr.Message,
		Type:  string(appErr.Kind),
		Code:  appErr.Code,
	}

	switch appErr.Kind {
	case apperrors.KindStorage:
		switch appErr.Code {
		case apperrors.CodeValidation:
			return http.StatusBadRequest, resp
		case apperrors.CodeQuotaExceeded:
			return http.StatusInsufficientStorage, resp
		default:
			return http.StatusInternalServerError, resp
		}
	case apperrors.KindAPI:
		if appErr.StatusCode >= 400 && appErr.StatusCode < 600 {
			return appErr.StatusCode, resp
		}
		return http.StatusBadGateway, resp
	case apperrors.KindNetwork:
		return http.StatusBadGateway, resp
	case apperrors.KindCamera:
		return http.StatusBadRequest, resp
	default:
		return http.StatusInternalServerError, resp
	}
}
