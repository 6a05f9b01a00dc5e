// Package session persists the authenticated user's credentials between runs.
package session

import (
	"context"
	"errors"
)

// Session is the persisted identity of the logged-in user. The token is an
// opaque credential; presence of a non-empty token is the sole authentication
// signal. Expiry is discovered reactively when the backend answers 401.
type Session struct {
	Token    string `json:"authToken"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// ErrNotFound indicates no session has been saved.
var ErrNotFound = errors.New("session: not found")

// Store saves and retrieves the session. Implementations must treat Clear on
// an empty store as a no-op.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

// IsPresent reports whether st holds a session with a non-empty token.
func IsPresent(ctx context.Context, st Store) bool {
	s, err := st.Get(ctx)
	if err != nil {
		return false
	}
	return s.Token != ""
}
