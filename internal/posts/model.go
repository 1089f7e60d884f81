package posts

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	Draft     Status = "draft"
	Published Status = "published"
)

// Post is the canonical post record. ID and AuthorID are immutable after
// creation; PublishedAt is set exactly once, on the first transition to
// Published, and is never cleared by later saves.
type Post struct {
	ID             uuid.UUID  `json:"id"`
	AuthorID       uuid.UUID  `json:"author_id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Status         Status     `json:"status"`
	FeaturedImage  string     `json:"featured_image,omitempty"`
	SEOTitle       string     `json:"seo_title,omitempty"`
	SEODescription string     `json:"seo_description,omitempty"`
	SEOKeywords    []string   `json:"seo_keywords,omitempty"`
	CanonicalURL   string     `json:"canonical_url,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Update carries a partial edit. Nil pointers leave the field unchanged; a
// pointer to the zero value clears it. A nil SEOKeywords slice means
// unchanged.
type Update struct {
	Title          *string
	Slug           *string
	Content        *string
	Excerpt        *string
	FeaturedImage  *string
	SEOTitle       *string
	SEODescription *string
	SEOKeywords    []string
	CanonicalURL   *string
}

// Stats summarizes an author's dashboard counts.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}
