package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/images"
)

const maxImageSize = 10 << 20 // 10MB

type ImagesHandler struct {
	svc    *images.Service
	logger *slog.Logger
}

func NewImagesHandler(svc *images.Service, logger *slog.Logger) *ImagesHandler {
	return &ImagesHandler{
		svc:    svc,
		logger: logger,
	}
}

// Attach accepts a multipart "image" part and sets it as the post's featured
// image.
func (h *ImagesHandler) Attach() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
			return
		}
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart body", nil)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "image file is required", nil)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		url, err := h.svc.Attach(r.Context(), auth.SessionFrom(r.Context()), id, header.Filename, file, contentType)
		if err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"featured_image": url})
	}
}

// Detach removes the featured image; repeating it is a no-op.
func (h *ImagesHandler) Detach() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
			return
		}
		if err := h.svc.Detach(r.Context(), auth.SessionFrom(r.Context()), id); err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
