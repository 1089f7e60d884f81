package events

import (
	"time"

	"github.com/google/uuid"
)

const TypePostPublished = "post.published"

type PostPublishedPayload struct {
	PostID   uuid.UUID `json:"post_id"`
	AuthorID uuid.UUID `json:"author_id"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
}

type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

// NewPostPublished builds the event emitted on a post's first transition to
// published. Republishing an already-published post does not emit it.
func NewPostPublished(postID, authorID uuid.UUID, slug, title string) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			PostID:   postID,
			AuthorID: authorID,
			Slug:     slug,
			Title:    title,
		},
	}
}
