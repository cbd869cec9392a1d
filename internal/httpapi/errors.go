package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thenoetrevino/quadro/internal/models"
)

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	ErrorID string `json:"error_id,omitempty"`
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConflict:
		return http.StatusConflict
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its kind. Storage failures
// are logged with a diagnostic id and never echoed to the client.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		id := uuid.NewString()
		slog.Error("request failed",
			"error_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.AbortWithStatusJSON(status, errorResponse{Error: "internal error", ErrorID: id})
		return
	}

	msg := err.Error()
	var me *models.Error
	if errors.As(err, &me) && me.Message != "" {
		msg = me.Message
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Kind: string(kind)})
}

// badRequest reports a malformed body or parameter
func badRequest(c *gin.Context, err error) {
	respondError(c, models.Validation("invalid request: "+err.Error()))
}
