package session

import (
	"context"
	"time"
)

// Session is a live login recorded in the backend registry. A signed token is
// only honored while its session id is still registered, which is what makes
// "log out everywhere" possible with self-contained tokens.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Registry is the backend session store.
type Registry interface {
	Add(ctx context.Context, s Session, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	// DeleteAllForUser drops every live session of the user.
	DeleteAllForUser(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}
