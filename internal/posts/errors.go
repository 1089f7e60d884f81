package posts

import "errors"

var (
	ErrNotFound   = errors.New("post not found")
	ErrSlugExists = errors.New("slug already exists")
	ErrForbidden  = errors.New("not the post author")
	ErrValidation = errors.New("invalid post field")
)
