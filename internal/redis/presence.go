package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	presenceKeyPrefix = "presence:"       // Per-user presence key with TTL
	presenceOnlineSet = "presence:online" // Set of online user IDs
)

// PresenceStore tracks which users hold a live connection.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewPresenceStore creates a presence store. A nil redis client makes every
// operation a no-op.
func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// SetOnline marks a user as online.
func (p *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	if p == nil || p.client == nil {
		return nil
	}
	pipe := p.client.TxPipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, time.Now().Format(time.RFC3339), p.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline clears a user's presence.
func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	if p == nil || p.client == nil {
		return nil
	}
	pipe := p.client.TxPipeline()
	pipe.Del(ctx, presenceKeyPrefix+userID)
	pipe.SRem(ctx, presenceOnlineSet, userID)
	_, err := pipe.Exec(ctx)
	return err
}
