package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/assignments"
	"github.com/Spok95/spa-clinic/internal/domain/catalog"
	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/patients"
	"github.com/Spok95/spa-clinic/internal/domain/sessions"
	"github.com/Spok95/spa-clinic/internal/domain/staff"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
	httpinfra "github.com/Spok95/spa-clinic/internal/infra/http"
)

var errInvalidRequest = errors.New("invalid request")

type errorPayload struct {
	Type    string                  `json:"type"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware отдаёт последнюю ошибку из c.Errors как JSON.
// Сбои бэкенда логируются с причиной, клиенту уходит общее сообщение.
func ErrorHandlingMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}

		status, payload := mapError(last.Err)
		if status == http.StatusInternalServerError {
			log.ErrorContext(c.Request.Context(), "request failed",
				"route", c.FullPath(),
				"request_id", c.GetString(httpinfra.KeyRequestID),
				"err", last.Err,
			)
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: "validation error", Errors: verr.Fields}
	}

	switch {
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: "invalid request"}

	case errors.Is(err, patients.ErrNotFound),
		errors.Is(err, staff.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrNotPromotion),
		errors.Is(err, assignments.ErrNotFound),
		errors.Is(err, assignments.ErrTreatmentNotFound),
		errors.Is(err, assignments.ErrUnknownReference),
		errors.Is(err, sessions.ErrNotFound),
		errors.Is(err, sessions.ErrAssignmentNotFound),
		errors.Is(err, sessions.ErrComponentNotFound),
		errors.Is(err, sessions.ErrUnknownAssistant),
		errors.Is(err, commissions.ErrUnknownStaff):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}

	case errors.Is(err, sessions.ErrNoSessionsLeft),
		errors.Is(err, sessions.ErrAssignmentClosed),
		errors.Is(err, sessions.ErrDuplicateNumber),
		errors.Is(err, assignments.ErrAlreadyCompleted),
		errors.Is(err, catalog.ErrDuplicateName),
		errors.Is(err, catalog.ErrInUse),
		errors.Is(err, patients.ErrInUse):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
}
