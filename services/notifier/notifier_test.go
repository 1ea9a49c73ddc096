package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"sjsage522/bountyradar/internal/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSink records every message it is asked to send
type MockSink struct {
	messages []string
	err      error
}

func (m *MockSink) Send(_ context.Context, text string) error {
	m.messages = append(m.messages, text)
	return m.err
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(listing.Listing{
		Title:      "FinTech API Bounty",
		Platform:   "yeswehack",
		RewardText: "$1,000-$5,000",
		MaxReward:  5000,
		Scope:      "api",
		Link:       "https://bbradar.io/p/1",
	})

	assert.Contains(t, msg, "*New Paid Bounty Program Found!*")
	assert.Contains(t, msg, "*Title:* FinTech API Bounty")
	assert.Contains(t, msg, "*Platform:* yeswehack")
	assert.Contains(t, msg, "*Reward:* $1,000-$5,000 (max $5000)")
	assert.Contains(t, msg, "*Scope:* api")
	assert.Contains(t, msg, "[View Program](https://bbradar.io/p/1)")
}

func TestFormatMessageOmitsUnknownScopeAndEscapes(t *testing.T) {
	msg := FormatMessage(listing.Listing{
		Title:      "acme_corp [beta]",
		Platform:   "bugcrowd",
		RewardText: "$150",
		MaxReward:  150,
		Scope:      listing.DefaultScope,
		Link:       "#",
	})

	assert.NotContains(t, msg, "*Scope:*")
	assert.Contains(t, msg, `acme\_corp \[beta]`)
	assert.NotContains(t, msg, `\]`)
}

func TestNotifyPropagatesSinkError(t *testing.T) {
	sink := &MockSink{err: errors.New("status 500")}
	n := New(sink)

	err := n.Notify(context.Background(), listing.Listing{Title: "x", Link: "L1"})
	assert.EqualError(t, err, "status 500")
	assert.Len(t, sink.messages, 1)
}

func TestNotifyRateLimit(t *testing.T) {
	sink := &MockSink{}
	n := New(sink, WithRateLimit(20))

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, n.Notify(context.Background(), listing.Listing{Link: "L"}))
	}

	// burst of one, then 50ms between sends
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, sink.messages, 3)
}

func TestNotifyRateLimitHonoursCancellation(t *testing.T) {
	sink := &MockSink{}
	n := New(sink, WithRateLimit(0.001))

	require.NoError(t, n.Notify(context.Background(), listing.Listing{Link: "L1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.Notify(ctx, listing.Listing{Link: "L2"}))
	assert.Len(t, sink.messages, 1)
}
