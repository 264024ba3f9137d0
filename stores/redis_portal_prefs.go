package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/swifthaul/access"
)

// RedisPortalPrefStore keeps each principal's last-used portal in Redis
// (key: portalpref:{principalID}), surviving session churn. The portal
// resolver reads the preference back into Principal.LastPortal at login.
type RedisPortalPrefStore struct {
	client *redis.Client
	keyFmt string
}

func NewRedisPortalPrefStore(client *redis.Client) *RedisPortalPrefStore {
	return &RedisPortalPrefStore{client: client, keyFmt: "portalpref:%s"}
}

func (r *RedisPortalPrefStore) key(principalID string) string {
	return fmt.Sprintf(r.keyFmt, principalID)
}

// SetLastPortal records the portal a principal last entered.
func (r *RedisPortalPrefStore) SetLastPortal(ctx context.Context, principalID string, portal access.Portal) error {
	return r.client.Set(ctx, r.key(principalID), string(portal), 0).Err()
}

// LastPortal returns the recorded preference, or empty when none exists.
func (r *RedisPortalPrefStore) LastPortal(ctx context.Context, principalID string) (access.Portal, error) {
	v, err := r.client.Get(ctx, r.key(principalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return access.Portal(v), nil
}

// ClearLastPortal drops the preference.
func (r *RedisPortalPrefStore) ClearLastPortal(ctx context.Context, principalID string) error {
	return r.client.Del(ctx, r.key(principalID)).Err()
}
