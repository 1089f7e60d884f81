package posts

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/events"
)

const (
	publishedListLimit = 10

	placeholderTitle   = "Untitled Post"
	placeholderContent = "# Start writing..."
)

// Service is the post lifecycle manager: it applies defaulting rules before
// any write, enforces authorship, and gates reads through the visibility
// rule. All persistence goes through the Repository.
type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create allocates a new draft for actor with placeholder title and content
// and a timestamp-derived slug, which is non-empty and unique without a
// collision lookup.
func (s *Service) Create(ctx context.Context, actor *auth.Session) (*Post, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}
	p := &Post{
		ID:       uuid.New(),
		AuthorID: actor.UserID,
		Title:    placeholderTitle,
		Slug:     fmt.Sprintf("draft-%d", s.now().UnixMilli()),
		Content:  placeholderContent,
		Status:   Draft,
	}
	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return created, nil
}

// Save applies a partial update to the actor's post, fills derived defaults
// (slug from title, seo_title from title), and optionally publishes. The
// first publish stamps published_at; republishing never changes it. After a
// publish the record is re-read so callers observe server-assigned
// timestamps.
func (s *Service) Save(ctx context.Context, actor *auth.Session, postID uuid.UUID, update Update, publish bool) (*Post, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actor.UserID {
		return nil, ErrForbidden
	}

	if err := apply(p, update); err != nil {
		return nil, err
	}
	if p.Slug == "" {
		p.Slug = MakeSlug(p.Title)
	}
	if p.SEOTitle == "" {
		p.SEOTitle = p.Title
	}

	firstPublish := false
	if publish {
		p.Status = Published
		if p.PublishedAt == nil {
			t := s.now().UTC()
			p.PublishedAt = &t
			firstPublish = true
		}
	}

	saved, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	if firstPublish {
		e := events.NewPostPublished(saved.ID, saved.AuthorID, saved.Slug, saved.Title)
		if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
			s.logger.Error("publish event failed", "post_id", saved.ID, "error", err)
		}
	}
	if publish {
		// Server-assigned timestamps may lag the write; re-read instead of
		// trusting the local echo.
		if fresh, err := s.repo.GetByID(ctx, saved.ID); err == nil {
			saved = fresh
		}
	}
	return saved, nil
}

// Get returns the post by id if it is visible to actor.
func (s *Service) Get(ctx context.Context, actor *auth.Session, id uuid.UUID) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(actor, p) {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetBySlug returns the post by slug if it is visible to actor. Invisible
// drafts read as not found so their existence does not leak.
func (s *Service) GetBySlug(ctx context.Context, actor *auth.Session, slug string) (*Post, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !Visible(actor, p) {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPublished returns the most recently published posts. The published-only
// predicate is applied by the repository, not by filtering rows client-side.
func (s *Service) ListPublished(ctx context.Context) ([]*Post, error) {
	return s.repo.ListPublished(ctx, publishedListLimit)
}

// ListMine returns all of the actor's own posts, newest edits first, with
// dashboard counts.
func (s *Service) ListMine(ctx context.Context, actor *auth.Session) ([]*Post, Stats, error) {
	if actor == nil {
		return nil, Stats{}, auth.ErrUnauthenticated
	}
	list, err := s.repo.ListByAuthor(ctx, actor.UserID)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := Stats{Total: len(list)}
	for _, p := range list {
		if p.Status == Published {
			stats.Published++
		} else {
			stats.Drafts++
		}
	}
	return list, stats, nil
}

// Visible reports whether actor may read p: published posts are public,
// drafts are readable only by their author.
func Visible(actor *auth.Session, p *Post) bool {
	if p.Status == Published {
		return true
	}
	return actor != nil && actor.UserID == p.AuthorID
}

func apply(p *Post, u Update) error {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Slug != nil {
		// Explicit slugs are normalized so the URL-safety invariant holds
		// regardless of input.
		p.Slug = MakeSlug(*u.Slug)
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Excerpt != nil {
		p.Excerpt = *u.Excerpt
	}
	if u.FeaturedImage != nil {
		p.FeaturedImage = *u.FeaturedImage
	}
	if u.SEOTitle != nil {
		p.SEOTitle = *u.SEOTitle
	}
	if u.SEODescription != nil {
		if utf8.RuneCountInString(*u.SEODescription) > 160 {
			return fmt.Errorf("%w: seo_description exceeds 160 characters", ErrValidation)
		}
		p.SEODescription = *u.SEODescription
	}
	if u.SEOKeywords != nil {
		p.SEOKeywords = u.SEOKeywords
	}
	if u.CanonicalURL != nil {
		p.CanonicalURL = *u.CanonicalURL
	}
	return nil
}
