package seen

import (
	"context"
	"encoding/json"

	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the seen set as a JSON array under a single Redis key
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Load reads the array stored at key. A missing key is an empty set; a
// connection failure is returned so the caller does not mistake it for one.
func (r *RedisStore) Load(ctx context.Context) (*SeenSet, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return NewSeenSet(), nil
	}
	if err != nil {
		return nil, errors.NewPersistence("redis", "failed to read seen links", err)
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		logger.ForStore().Warn().Err(err).Str("key", r.key).Msg("Seen store is corrupt, starting empty")
		return NewSeenSet(), nil
	}

	return NewSeenSet(links...), nil
}

// Save overwrites key with the full set
func (r *RedisStore) Save(ctx context.Context, set *SeenSet) error {
	data, err := json.Marshal(set.Links())
	if err != nil {
		return errors.NewPersistence("redis", "failed to encode seen links", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.NewPersistence("redis", "failed to write seen links", err)
	}
	return nil
}
