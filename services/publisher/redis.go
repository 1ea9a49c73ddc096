package publisher

import (
	"context"
	"encoding/json"

	"sjsage522/bountyradar/internal/listing"
	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// ListingField is the stream entry field holding the listing JSON
const ListingField = "listing"

// RedisPublisher implements Publisher using a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(client *redis.Client, stream string, streamMaxLength int) *RedisPublisher {
	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: streamMaxLength,
	}
}

// Publish adds the listing as JSON to the stream
func (p *RedisPublisher) Publish(ctx context.Context, l listing.Listing) error {
	data, err := json.Marshal(l)
	if err != nil {
		return errors.NewPublisher("redis", "failed to encode listing", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			ListingField: string(data),
		},
	}).Result()
	if err != nil {
		return errors.NewPublisher("redis", "failed to add to stream "+p.stream, err)
	}

	logger.ForPublisher().Debug().
		Str("stream", p.stream).
		Str("id", id).
		Str("link", l.Link).
		Msg("Published listing")
	return nil
}

// TrimStreams trims the stream to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}
	removed, err := p.client.XTrimMaxLen(ctx, p.stream, int64(p.streamMaxLength)).Result()
	if err != nil {
		return errors.NewPublisher("redis", "failed to trim stream "+p.stream, err)
	}
	if removed > 0 {
		logger.ForPublisher().Debug().Str("stream", p.stream).Int64("removed", removed).Msg("Trimmed stream")
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
