package seen

import (
	"context"
	"testing"

	"sjsage522/bountyradar/pkg/errors"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	key := "bountyradar:test:seen"
	defer client.Del(ctx, key)
	client.Del(ctx, key)

	store := NewRedisStore(client, key)
	assert.Equal(t, 0, mustLoad(t, store).Len())

	require.NoError(t, store.Save(ctx, NewSeenSet("L1", "L2")))
	assert.Equal(t, []string{"L1", "L2"}, mustLoad(t, store).Links())

	require.NoError(t, client.Set(ctx, key, "garbage", 0).Err())
	assert.Equal(t, 0, mustLoad(t, store).Len())
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	set, err := NewRedisStore(client, "bountyradar:test:seen").Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, set)
	assert.True(t, errors.Is(err, errors.ErrorTypePersistence))
}
