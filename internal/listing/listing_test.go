package listing

import (
	"testing"

	"sjsage522/bountyradar/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseReward(t *testing.T) {
	testCases := []struct {
		text     string
		expected int
	}{
		{"$500 - $1,500", 1500},
		{"$0", 0},
		{"N/A", 0},
		{"$250", 250},
		{"$1,000-$5,000", 5000},
		{"", 0},
		{"$100 - N/A", 100},
		{"up to $2,000", 0},
		{"$99999999999999999999999", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ParseReward(tc.text), tc.text)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	l, err := Normalize(RawRecord{})
	require.NoError(t, err)

	assert.Equal(t, Listing{
		Title:      "Unknown",
		Platform:   "unknown",
		RewardText: "$0",
		MaxReward:  0,
		Scope:      "Unknown",
		Link:       "#",
	}, l)
}

func TestNormalizeTrimsAndLowercases(t *testing.T) {
	l, err := Normalize(RawRecord{
		Title:    strPtr("  FinTech API Bounty "),
		Platform: strPtr("YesWeHack"),
		Reward:   strPtr("$1,000-$5,000"),
		Scope:    strPtr("api"),
		Link:     strPtr(" https://bbradar.io/p/1 "),
	})
	require.NoError(t, err)

	assert.Equal(t, "FinTech API Bounty", l.Title)
	assert.Equal(t, "yeswehack", l.Platform)
	assert.Equal(t, "$1,000-$5,000", l.RewardText)
	assert.Equal(t, 5000, l.MaxReward)
	assert.Equal(t, "api", l.Scope)
	assert.Equal(t, "https://bbradar.io/p/1", l.Link)
}

func TestNormalizeRejectsEmptyHref(t *testing.T) {
	_, err := Normalize(RawRecord{Title: strPtr("Broken"), Link: strPtr("")})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeParsing))
}

func TestNormalizeBatchIsolatesMalformedRecords(t *testing.T) {
	raws := []RawRecord{
		{Title: strPtr("First"), Link: strPtr("L1")},
		{Title: strPtr("Broken"), Link: strPtr("   ")},
		{Title: strPtr("Third"), Link: strPtr("L3")},
	}

	batch := NormalizeBatch(raws)

	require.Len(t, batch.Listings, 2)
	assert.Equal(t, "L1", batch.Listings[0].Link)
	assert.Equal(t, "L3", batch.Listings[1].Link)
	require.Len(t, batch.Diagnostics, 1)
	assert.Equal(t, 1, batch.Diagnostics[0].Index)
	assert.Contains(t, batch.Diagnostics[0].String(), "record 1 skipped")
}
