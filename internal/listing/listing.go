package listing

import (
	"fmt"
	"net/url"
	"strings"

	"sjsage522/bountyradar/pkg/errors"
)

// Defaults applied when a card is missing a sub-element
const (
	DefaultTitle      = "Unknown"
	DefaultPlatform   = "Unknown"
	DefaultRewardText = "$0"
	DefaultScope      = "Unknown"
	DefaultLink       = "#"
)

// Listing is one bug bounty program as surfaced by the source
type Listing struct {
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	RewardText string `json:"reward_text"`
	MaxReward  int    `json:"max_reward"`
	Scope      string `json:"scope"`
	Link       string `json:"link"`
}

// RawRecord holds the text extracted from one card. A nil field means the
// sub-element was absent from the card.
type RawRecord struct {
	Title    *string
	Platform *string
	Reward   *string
	Scope    *string
	Link     *string
}

// Diagnostic describes a record that was skipped during normalization
type Diagnostic struct {
	Index int
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("record %d skipped: %v", d.Index, d.Err)
}

// Batch is the outcome of normalizing one fetch result
type Batch struct {
	Listings    []Listing
	Diagnostics []Diagnostic
}

// Normalize converts a raw record into a Listing, substituting defaults for
// missing fields. It fails only for a record whose link element is present
// but unusable.
func Normalize(raw RawRecord) (Listing, error) {
	l := Listing{
		Title:      valueOr(raw.Title, DefaultTitle),
		Platform:   strings.ToLower(valueOr(raw.Platform, DefaultPlatform)),
		RewardText: valueOr(raw.Reward, DefaultRewardText),
		Scope:      valueOr(raw.Scope, DefaultScope),
		Link:       DefaultLink,
	}

	if raw.Link != nil {
		link := strings.TrimSpace(*raw.Link)
		if link == "" {
			return Listing{}, errors.NewParsing("normalizer", "link element has no href", nil)
		}
		if _, err := url.Parse(link); err != nil {
			return Listing{}, errors.NewParsing("normalizer", "invalid link", err)
		}
		l.Link = link
	}

	l.MaxReward = ParseReward(l.RewardText)
	return l, nil
}

// NormalizeBatch normalizes every record, keeping input order. Records that
// fail are reported as diagnostics and do not abort the batch.
func NormalizeBatch(raws []RawRecord) Batch {
	batch := Batch{Listings: make([]Listing, 0, len(raws))}
	for i, raw := range raws {
		l, err := Normalize(raw)
		if err != nil {
			batch.Diagnostics = append(batch.Diagnostics, Diagnostic{Index: i, Err: err})
			continue
		}
		batch.Listings = append(batch.Listings, l)
	}
	return batch
}

// valueOr returns the trimmed value, or def when the field is absent or blank
func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return def
	}
	return s
}
