// Package auth validates bearer tokens issued by the identity provider and
// carries the resulting session through request context. Session issuance
// itself (sign-up, sign-in, refresh) is not part of this service.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUnauthenticated = errors.New("no valid session")

// Session identifies an authenticated actor. A nil *Session means anonymous.
type Session struct {
	UserID uuid.UUID
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, or nil for anonymous
// requests.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
