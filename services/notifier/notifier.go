// Package notifier formats new listings and delivers them to a chat.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"sjsage522/bountyradar/internal/listing"
	"sjsage522/bountyradar/logger"

	"golang.org/x/time/rate"
)

// Sink delivers a formatted message
type Sink interface {
	Send(ctx context.Context, text string) error
}

// Notifier formats listings and sends them through a Sink
type Notifier struct {
	sink    Sink
	limiter *rate.Limiter
}

// Option configures a Notifier
type Option func(*Notifier)

// WithRateLimit paces sends to perSecond messages per second. Zero or a
// negative value disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(n *Notifier) {
		if perSecond <= 0 {
			n.limiter = nil
			return
		}
		n.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a Notifier
func New(sink Sink, opts ...Option) *Notifier {
	n := &Notifier{sink: sink}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify sends one message for l
func (n *Notifier) Notify(ctx context.Context, l listing.Listing) error {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	log := logger.ForNotifier().WithField("link", l.Link)
	if err := n.sink.Send(ctx, FormatMessage(l)); err != nil {
		log.WithError(err).Debug().Msg("Delivery failed")
		return err
	}
	log.Debug().Msg("Delivered")
	return nil
}

// markdownEscaper covers the characters legacy Markdown lets a message escape
var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"`", "\\`",
)

// FormatMessage renders l as a Telegram Markdown message
func FormatMessage(l listing.Listing) string {
	var b strings.Builder
	b.WriteString("🚀 *New Paid Bounty Program Found!*\n\n")
	fmt.Fprintf(&b, "*Title:* %s\n", markdownEscaper.Replace(l.Title))
	fmt.Fprintf(&b, "*Platform:* %s\n", markdownEscaper.Replace(l.Platform))
	fmt.Fprintf(&b, "*Reward:* %s (max $%d)\n", markdownEscaper.Replace(l.RewardText), l.MaxReward)
	if l.Scope != "" && l.Scope != listing.DefaultScope {
		fmt.Fprintf(&b, "*Scope:* %s\n", markdownEscaper.Replace(l.Scope))
	}
	fmt.Fprintf(&b, "*Link:* [View Program](%s)", l.Link)
	return b.String()
}
