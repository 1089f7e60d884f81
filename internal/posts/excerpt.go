package posts

import "strings"

const excerptLength = 150

// DisplayExcerpt returns the post's summary for listings: the explicit excerpt when
// set, otherwise a plain-text cut of the content with heading, emphasis and
// code markers stripped, truncated to 150 runes with an ellipsis appended
// only when truncation occurred.
func (p *Post) DisplayExcerpt() string {
	if p.Excerpt != "" {
		return p.Excerpt
	}
	return deriveExcerpt(p.Content)
}

func deriveExcerpt(content string) string {
	plain := strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '`':
			return -1
		}
		return r
	}, content))
	runes := []rune(plain)
	if len(runes) > excerptLength {
		return string(runes[:excerptLength]) + "..."
	}
	return plain
}
