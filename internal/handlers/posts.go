package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/markdown"
	"github.com/calebwren/inkwell/internal/posts"
	"github.com/calebwren/inkwell/internal/profiles"
)

type PostsHandler struct {
	svc      *posts.Service
	profiles profiles.Repository
	logger   *slog.Logger
}

func NewPostsHandler(svc *posts.Service, profileRepo profiles.Repository, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:      svc,
		profiles: profileRepo,
		logger:   logger,
	}
}

// postResponse is the post record as served to readers: the excerpt falls
// back to the derived one when the author never set it.
type postResponse struct {
	*posts.Post
	Excerpt     string            `json:"excerpt"`
	ContentHTML string            `json:"content_html,omitempty"`
	Author      *profiles.Profile `json:"author,omitempty"`
}

func toResponse(p *posts.Post) postResponse {
	return postResponse{Post: p, Excerpt: p.DisplayExcerpt()}
}

// Create allocates a fresh draft for the current actor.
func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.svc.Create(r.Context(), auth.SessionFrom(r.Context()))
		if err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(post))
	}
}

type saveRequest struct {
	Title          *string `json:"title"`
	Slug           *string `json:"slug"`
	Content        *string `json:"content"`
	Excerpt        *string `json:"excerpt"`
	SEOTitle       *string `json:"seo_title"`
	SEODescription *string `json:"seo_description"`
	SEOKeywords    *string `json:"seo_keywords"`
	CanonicalURL   *string `json:"canonical_url"`
	Publish        string  `json:"publish,omitempty"`
}

// Save applies a partial update; "publish": "published" additionally moves
// the post to the published state.
func (h *PostsHandler) Save() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
			return
		}
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		if req.Publish != "" && req.Publish != string(posts.Published) {
			writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "publish must be \"published\"", nil)
			return
		}

		update := posts.Update{
			Title:          req.Title,
			Slug:           req.Slug,
			Content:        req.Content,
			Excerpt:        req.Excerpt,
			SEOTitle:       req.SEOTitle,
			SEODescription: req.SEODescription,
			CanonicalURL:   req.CanonicalURL,
		}
		if req.SEOKeywords != nil {
			update.SEOKeywords = posts.ParseKeywords(*req.SEOKeywords)
		}

		post, err := h.svc.Save(r.Context(), auth.SessionFrom(r.Context()), id, update, req.Publish == string(posts.Published))
		if err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(post))
	}
}

// ListPublished serves the public landing feed.
func (h *PostsHandler) ListPublished() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.ListPublished(r.Context())
		if err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}
		out := make([]postResponse, 0, len(list))
		for _, p := range list {
			out = append(out, toResponse(p))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
	}
}

// GetBySlug serves a single post, rendered and with its author profile
// expanded. Drafts resolve only for their author.
func (h *PostsHandler) GetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "slug is required", nil)
			return
		}
		post, err := h.svc.GetBySlug(r.Context(), auth.SessionFrom(r.Context()), slug)
		if err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}

		resp := toResponse(post)
		html, err := markdown.Render(post.Content)
		if err != nil {
			h.logger.Error("render failed", "slug", slug, "error", err)
		} else {
			resp.ContentHTML = html
		}
		author, err := h.profiles.GetByUserID(r.Context(), post.AuthorID)
		if err != nil && !errors.Is(err, profiles.ErrNotFound) {
			h.logger.Error("profile lookup failed", "author_id", post.AuthorID, "error", err)
		}
		resp.Author = author

		writeJSON(w, http.StatusOK, resp)
	}
}

// Dashboard lists the actor's own posts, drafts included, with counts.
func (h *PostsHandler) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, stats, err := h.svc.ListMine(r.Context(), auth.SessionFrom(r.Context()))
		if err != nil {
			writeDomainError(w, r, h.logger, err)
			return
		}
		out := make([]postResponse, 0, len(list))
		for _, p := range list {
			out = append(out, toResponse(p))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "stats": stats})
	}
}
