package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

const oauthStatePrefix = "oauth:state:"

// SaveOAuthState stashes the anti-forgery state together with the id of
// the user who started the flow.
func (r *Redis) SaveOAuthState(ctx context.Context, state, uid string, ttl time.Duration) error {
	return r.C.Set(ctx, oauthStatePrefix+state, uid, ttl).Err()
}

// TakeOAuthState consumes the state exactly once and returns the stashed
// user id; "" means unknown or already used.
func (r *Redis) TakeOAuthState(ctx context.Context, state string) (string, error) {
	uid, err := r.C.GetDel(ctx, oauthStatePrefix+state).Result()
	if err == redis.Nil {
		return "", nil
	}
	return uid, err
}
