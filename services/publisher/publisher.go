package publisher

import (
	"context"

	"sjsage522/bountyradar/internal/listing"
)

// Publisher fans newly notified listings out to downstream consumers
type Publisher interface {
	// Publish appends a listing to the stream
	Publish(ctx context.Context, l listing.Listing) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
