package redissessions

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/session"
)

// Keys: session:<id> -> user id (with TTL), user-sessions:<user id> -> set of
// session ids. The set may hold ids whose session keys already expired; those
// are simply dropped again on the next delete-all.
const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "user-sessions:"
)

type registry struct {
	rdb *redis.Client
}

var _ session.Registry = (*registry)(nil)

func NewRegistry(conf *core.Config) session.Registry {
	return &registry{
		rdb: redis.NewClient(&redis.Options{
			Addr:     conf.Sessions.Addr,
			Password: conf.Sessions.Password,
		}),
	}
}

func (reg *registry) Add(ctx context.Context, s session.Session, ttl time.Duration) error {
	pipe := reg.rdb.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+s.ID, s.UserID, ttl)
	pipe.SAdd(ctx, userKeyPrefix+s.UserID, s.ID)
	pipe.Expire(ctx, userKeyPrefix+s.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "registering session")
	}
	return nil
}

func (reg *registry) Exists(ctx context.Context, id string) (bool, error) {
	n, err := reg.rdb.Exists(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking session")
	}
	return n > 0, nil
}

func (reg *registry) DeleteAllForUser(ctx context.Context, userID string) error {
	ids, err := reg.rdb.SMembers(ctx, userKeyPrefix+userID).Result()
	if err != nil {
		return errors.Wrap(err, "listing user sessions")
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, userKeyPrefix+userID)
	if err = reg.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "deleting user sessions")
	}
	return nil
}

func (reg *registry) Ping(ctx context.Context) error {
	return reg.rdb.Ping(ctx).Err()
}
