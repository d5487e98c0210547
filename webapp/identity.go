package webapp

import (
	"context"
	"sync"

	"github.com/grammarlab/grammarlab/core/user"
)

// Identity is the session/identity state of one browsing context. It starts
// in the loading state, resolves exactly once via Init, and stays resolved
// until Logout clears it. While Loading() is true the authorization status is
// unknown: consumers must not render protected content or issue redirects.
type Identity struct {
	facade *Facade

	mu       sync.RWMutex
	initOnce sync.Once
	user     *user.User
	err      string
	loading  bool
}

func NewIdentity(facade *Facade) *Identity {
	return &Identity{facade: facade, loading: true}
}

// Init probes the current session. It runs at most once per Identity:
// success sets the user; the expected "Not authenticated" outcome leaves the
// user nil without recording an error; any other failure records the message.
// The loading flag always ends up false.
func (id *Identity) Init(ctx context.Context, token string) {
	id.initOnce.Do(func() {
		res := id.facade.CurrentUser(ctx, token)

		id.mu.Lock()
		defer id.mu.Unlock()
		switch {
		case res.Success:
			usr := res.Data
			id.user = &usr
		case res.Error.Message == MsgNotAuthenticated:
			// not an error, just no session
		default:
			id.err = res.Error.Message
		}
		id.loading = false
	})
}

// Logout drops the backend sessions and unconditionally clears the local
// user, whatever the backend said.
func (id *Identity) Logout(ctx context.Context, token string) {
	id.facade.Logout(ctx, token)

	id.mu.Lock()
	defer id.mu.Unlock()
	id.user = nil
}

// User returns the resolved user, or nil when no valid session exists.
func (id *Identity) User() *user.User {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.user
}

// Loading reports whether the initial session probe is still outstanding.
func (id *Identity) Loading() bool {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.loading
}

// Err returns the message of an unexpected probe failure, or "".
func (id *Identity) Err() string {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.err
}
