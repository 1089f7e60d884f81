package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/events"
	"github.com/calebwren/inkwell/internal/posts"
	"github.com/calebwren/inkwell/internal/profiles"
)

type testRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*posts.Post
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[uuid.UUID]*posts.Post{}}
}

func (r *testRepo) clone(p *posts.Post) *posts.Post {
	c := *p
	return &c
}

func (r *testRepo) Insert(_ context.Context, p *posts.Post) (*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.byID {
		if other.Slug == p.Slug {
			return nil, posts.ErrSlugExists
		}
	}
	c := r.clone(p)
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.byID[c.ID] = c
	return r.clone(c), nil
}

func (r *testRepo) GetByID(_ context.Context, id uuid.UUID) (*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return r.clone(p), nil
}

func (r *testRepo) GetBySlug(_ context.Context, slug string) (*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Slug == slug {
			return r.clone(p), nil
		}
	}
	return nil, posts.ErrNotFound
}

func (r *testRepo) Update(_ context.Context, p *posts.Post) (*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return nil, posts.ErrNotFound
	}
	c := r.clone(p)
	c.UpdatedAt = time.Now().UTC()
	r.byID[p.ID] = c
	return r.clone(c), nil
}

func (r *testRepo) ListPublished(_ context.Context, limit int) ([]*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*posts.Post
	for _, p := range r.byID {
		if p.Status == posts.Published {
			out = append(out, r.clone(p))
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *testRepo) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*posts.Post
	for _, p := range r.byID {
		if p.AuthorID == authorID {
			out = append(out, r.clone(p))
		}
	}
	return out, nil
}

type testProfileRepo struct {
	byUser map[uuid.UUID]*profiles.Profile
}

func (r *testProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*profiles.Profile, error) {
	p, ok := r.byUser[userID]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	return p, nil
}

func testHandler() (*PostsHandler, *testRepo, *testProfileRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newTestRepo()
	profileRepo := &testProfileRepo{byUser: map[uuid.UUID]*profiles.Profile{}}
	svc := posts.NewService(repo, events.NoopPublisher{}, logger)
	return NewPostsHandler(svc, profileRepo, logger), repo, profileRepo
}

func withSession(r *http.Request, s *auth.Session) *http.Request {
	return r.WithContext(auth.WithSession(r.Context(), s))
}

func decodePost(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestPostsHandler_Create(t *testing.T) {
	t.Run("creates a draft for the session user", func(t *testing.T) {
		h, _, _ := testHandler()
		actor := &auth.Session{UserID: uuid.New()}

		req := withSession(httptest.NewRequest(http.MethodPost, "/posts", nil), actor)
		rec := httptest.NewRecorder()
		h.Create()(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		got := decodePost(t, rec.Body)
		if got["status"] != "draft" {
			t.Errorf("status = %v", got["status"])
		}
		if got["author_id"] != actor.UserID.String() {
			t.Errorf("author_id = %v", got["author_id"])
		}
		if slug, _ := got["slug"].(string); !strings.HasPrefix(slug, "draft-") {
			t.Errorf("slug = %v", got["slug"])
		}
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		h, _, _ := testHandler()
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		rec := httptest.NewRecorder()
		h.Create()(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func createDraft(t *testing.T, h *PostsHandler, actor *auth.Session) uuid.UUID {
	t.Helper()
	req := withSession(httptest.NewRequest(http.MethodPost, "/posts", nil), actor)
	rec := httptest.NewRecorder()
	h.Create()(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: status %d", rec.Code)
	}
	got := decodePost(t, rec.Body)
	id, err := uuid.Parse(got["id"].(string))
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	return id
}

func saveReq(t *testing.T, h *PostsHandler, actor *auth.Session, id uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/posts/"+id.String(), strings.NewReader(body))
	req.SetPathValue("id", id.String())
	req = withSession(req, actor)
	rec := httptest.NewRecorder()
	h.Save()(rec, req)
	return rec
}

func TestPostsHandler_Save(t *testing.T) {
	t.Run("defaults slug and seo_title, then publishes", func(t *testing.T) {
		h, _, _ := testHandler()
		actor := &auth.Session{UserID: uuid.New()}
		id := createDraft(t, h, actor)

		rec := saveReq(t, h, actor, id, `{"title":"My Post","slug":""}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("save status = %d, body %s", rec.Code, rec.Body)
		}
		got := decodePost(t, rec.Body)
		if got["slug"] != "my-post" || got["seo_title"] != "My Post" {
			t.Errorf("slug=%v seo_title=%v", got["slug"], got["seo_title"])
		}

		rec = saveReq(t, h, actor, id, `{"publish":"published"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("publish status = %d, body %s", rec.Code, rec.Body)
		}
		got = decodePost(t, rec.Body)
		if got["status"] != "published" {
			t.Errorf("status = %v", got["status"])
		}
		if got["published_at"] == nil {
			t.Error("published_at missing")
		}
	})

	t.Run("keywords are parsed from the comma form", func(t *testing.T) {
		h, _, _ := testHandler()
		actor := &auth.Session{UserID: uuid.New()}
		id := createDraft(t, h, actor)

		rec := saveReq(t, h, actor, id, `{"seo_keywords":"blog, cms,, blog "}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		got := decodePost(t, rec.Body)
		kw, _ := got["seo_keywords"].([]any)
		if len(kw) != 2 || kw[0] != "blog" || kw[1] != "cms" {
			t.Errorf("seo_keywords = %v", got["seo_keywords"])
		}
	})

	t.Run("rejects unknown publish value", func(t *testing.T) {
		h, _, _ := testHandler()
		actor := &auth.Session{UserID: uuid.New()}
		id := createDraft(t, h, actor)

		rec := saveReq(t, h, actor, id, `{"publish":"archived"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("another author gets 403", func(t *testing.T) {
		h, _, _ := testHandler()
		id := createDraft(t, h, &auth.Session{UserID: uuid.New()})

		rec := saveReq(t, h, &auth.Session{UserID: uuid.New()}, id, `{"title":"X"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, body %s", rec.Code, rec.Body)
		}
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		h, _, _ := testHandler()
		rec := saveReq(t, h, &auth.Session{UserID: uuid.New()}, uuid.New(), `{}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestPostsHandler_GetBySlug(t *testing.T) {
	getBySlug := func(h *PostsHandler, actor *auth.Session, slug string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/posts/"+slug, nil)
		req.SetPathValue("slug", slug)
		if actor != nil {
			req = withSession(req, actor)
		}
		rec := httptest.NewRecorder()
		h.GetBySlug()(rec, req)
		return rec
	}

	t.Run("published post renders html and expands author", func(t *testing.T) {
		h, _, profileRepo := testHandler()
		actor := &auth.Session{UserID: uuid.New()}
		profileRepo.byUser[actor.UserID] = &profiles.Profile{
			UserID:   actor.UserID,
			Username: "wren",
			FullName: "C. Wren",
		}
		id := createDraft(t, h, actor)
		saveReq(t, h, actor, id, `{"title":"Hello","slug":"","content":"# Hello\n**hi**","publish":"published"}`)

		rec := getBySlug(h, nil, "hello")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		got := decodePost(t, rec.Body)
		html, _ := got["content_html"].(string)
		if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>hi</strong>") {
			t.Errorf("content_html = %q", html)
		}
		author, _ := got["author"].(map[string]any)
		if author == nil || author["username"] != "wren" {
			t.Errorf("author = %v", got["author"])
		}
	})

	t.Run("draft is 404 for anonymous, 200 for author", func(t *testing.T) {
		h, _, _ := testHandler()
		actor := &auth.Session{UserID: uuid.New()}
		id := createDraft(t, h, actor)
		saveReq(t, h, actor, id, `{"title":"Secret","slug":"secret"}`)

		if rec := getBySlug(h, nil, "secret"); rec.Code != http.StatusNotFound {
			t.Errorf("anonymous status = %d", rec.Code)
		}
		if rec := getBySlug(h, &auth.Session{UserID: uuid.New()}, "secret"); rec.Code != http.StatusNotFound {
			t.Errorf("stranger status = %d", rec.Code)
		}
		if rec := getBySlug(h, actor, "secret"); rec.Code != http.StatusOK {
			t.Errorf("author status = %d", rec.Code)
		}
	})

	t.Run("derived excerpt appears in the response", func(t *testing.T) {
		h, _, _ := testHandler()
		actor := &auth.Session{UserID: uuid.New()}
		id := createDraft(t, h, actor)
		saveReq(t, h, actor, id, `{"title":"E","slug":"e","content":"# Title\n**bold** text","publish":"published"}`)

		rec := getBySlug(h, nil, "e")
		got := decodePost(t, rec.Body)
		if got["excerpt"] != "Title\nbold text" {
			t.Errorf("excerpt = %q", got["excerpt"])
		}
	})
}

func TestPostsHandler_Dashboard(t *testing.T) {
	h, _, _ := testHandler()
	actor := &auth.Session{UserID: uuid.New()}

	id := createDraft(t, h, actor)
	saveReq(t, h, actor, id, `{"title":"A","slug":"a","publish":"published"}`)
	createDraft(t, h, actor)

	req := withSession(httptest.NewRequest(http.MethodGet, "/dashboard/posts", nil), actor)
	rec := httptest.NewRecorder()
	h.Dashboard()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodePost(t, rec.Body)
	stats, _ := got["stats"].(map[string]any)
	if stats["total"] != float64(2) || stats["published"] != float64(1) || stats["drafts"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}
}

func TestPostsHandler_ListPublished(t *testing.T) {
	h, _, _ := testHandler()
	actor := &auth.Session{UserID: uuid.New()}

	id := createDraft(t, h, actor)
	saveReq(t, h, actor, id, `{"title":"Live","slug":"live","publish":"published"}`)
	createDraft(t, h, actor) // stays draft

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	h.ListPublished()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodePost(t, rec.Body)
	data, _ := got["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data len = %d", len(data))
	}
	first, _ := data[0].(map[string]any)
	if first["slug"] != "live" {
		t.Errorf("slug = %v", first["slug"])
	}
}
