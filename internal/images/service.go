// Package images manages a post's single featured image: uploading the blob,
// wiring its public URL onto the post through the lifecycle save path, and
// removing both together on detach.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/posts"
	"github.com/calebwren/inkwell/internal/storage"
)

var (
	ErrUpload = errors.New("image upload failed")
	ErrDelete = errors.New("image deletion failed")
)

type Service struct {
	posts   *posts.Service
	storage storage.Storage
	now     func() time.Time
}

func NewService(postSvc *posts.Service, store storage.Storage) *Service {
	return &Service{
		posts:   postSvc,
		storage: store,
		now:     time.Now,
	}
}

// Attach uploads body as the featured image for the actor's post and saves
// its public URL on the record. The key is scoped under the author's ID so
// the blob store groups each actor's uploads.
func (s *Service) Attach(ctx context.Context, actor *auth.Session, postID uuid.UUID, filename string, body io.Reader, contentType string) (string, error) {
	if actor == nil {
		return "", auth.ErrUnauthenticated
	}
	key := fmt.Sprintf("%s/%d%s", actor.UserID, s.now().UnixNano(), path.Ext(filename))
	if err := s.storage.Upload(ctx, key, body, contentType); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	url := s.storage.PublicURL(key)
	if _, err := s.posts.Save(ctx, actor, postID, posts.Update{FeaturedImage: &url}, false); err != nil {
		// The post save did not go through; remove the orphaned blob so the
		// failed attach leaves no state behind.
		_ = s.storage.Delete(ctx, key)
		return "", err
	}
	return url, nil
}

// Detach clears the featured image field and deletes its blob. Only the
// post's author may detach; the record is cleared before the blob is removed
// so the field never points at a deleted object — a failed clear leaves both
// untouched, a failed delete leaves an orphaned blob at worst. A URL that
// does not belong to the blob store (set externally) only clears the field;
// a blob already gone counts as deleted. Detaching a post with no image is a
// no-op.
func (s *Service) Detach(ctx context.Context, actor *auth.Session, postID uuid.UUID) error {
	if actor == nil {
		return auth.ErrUnauthenticated
	}
	p, err := s.posts.Get(ctx, actor, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != actor.UserID {
		return posts.ErrForbidden
	}
	if p.FeaturedImage == "" {
		return nil
	}
	cleared := ""
	if _, err := s.posts.Save(ctx, actor, postID, posts.Update{FeaturedImage: &cleared}, false); err != nil {
		return err
	}
	if key, ok := s.storage.KeyFromURL(p.FeaturedImage); ok {
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrDelete, err)
		}
	}
	return nil
}
