package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/images"
	"github.com/calebwren/inkwell/internal/middleware"
	"github.com/calebwren/inkwell/internal/posts"
)

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]any{
		"error": APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}

// writeDomainError maps the post/image/auth error kinds onto the response
// envelope. Anything unrecognized is logged and reported as a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid session token", nil)
	case errors.Is(err, posts.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "not the post author", nil)
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
	case errors.Is(err, posts.ErrSlugExists):
		writeError(w, r, http.StatusConflict, "CONFLICT", "slug already exists", nil)
	case errors.Is(err, posts.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, images.ErrUpload):
		writeError(w, r, http.StatusBadGateway, "UPLOAD_FAILED", "image upload failed", nil)
	case errors.Is(err, images.ErrDelete):
		writeError(w, r, http.StatusBadGateway, "DELETE_FAILED", "image deletion failed", nil)
	default:
		logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", middleware.GetRequestID(r.Context()))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}
