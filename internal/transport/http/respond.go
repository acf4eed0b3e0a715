package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"exam-grading-service/internal/domain"
	"go.uber.org/zap"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain taxonomy onto HTTP once, at the edge.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		status int
		detail errorDetail
		verr   *domain.ValidationError
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		detail = errorDetail{Code: "validation_failed", Message: verr.Reason, Field: verr.Field}
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
		detail = errorDetail{Code: "validation_failed", Message: err.Error()}
	case errors.Is(err, domain.ErrNotGradable):
		status = http.StatusConflict
		detail = errorDetail{Code: "not_gradable", Message: "paper has no answer key yet"}
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		detail = errorDetail{Code: "already_submitted", Message: "paper already submitted by this student"}
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		detail = errorDetail{Code: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrTransient):
		status = http.StatusServiceUnavailable
		detail = errorDetail{Code: "transient", Message: "storage temporarily unavailable, retry"}
		w.Header().Set("Retry-After", "1")
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		detail = errorDetail{Code: "unauthenticated", Message: "missing or invalid bearer token"}
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		detail = errorDetail{Code: "forbidden", Message: "not allowed"}
	default:
		status = http.StatusInternalServerError
		detail = errorDetail{Code: "internal", Message: "internal error"}
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: detail})
}
