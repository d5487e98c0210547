package dummysessions

import (
	"context"
	"sync"
	"time"

	"github.com/grammarlab/grammarlab/core/session"
)

type registry struct {
	sync.RWMutex
	table map[string]session.Session // id -> session
}

var _ session.Registry = (*registry)(nil)

// NewRegistry returns an in-memory registry. TTLs are ignored; tests do not
// outlive session lifetimes.
func NewRegistry() session.Registry {
	return &registry{table: make(map[string]session.Session)}
}

func (reg *registry) Add(_ context.Context, s session.Session, _ time.Duration) error {
	reg.Lock()
	defer reg.Unlock()
	reg.table[s.ID] = s
	return nil
}

func (reg *registry) Exists(_ context.Context, id string) (bool, error) {
	reg.RLock()
	defer reg.RUnlock()
	_, ok := reg.table[id]
	return ok, nil
}

func (reg *registry) DeleteAllForUser(_ context.Context, userID string) error {
	reg.Lock()
	defer reg.Unlock()
	for id, s := range reg.table {
		if s.UserID == userID {
			delete(reg.table, id)
		}
	}
	return nil
}

func (reg *registry) Ping(context.Context) error { return nil }
