package crawler

import (
	"context"
	"net/http"

	"sjsage522/bountyradar/internal/listing"
)

// Source produces the raw listing records of one snapshot
type Source interface {
	// FetchRecords retrieves every card from the source
	FetchRecords(ctx context.Context) ([]listing.RawRecord, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string
}

// Selectors contains CSS selectors for the elements of a listing card
type Selectors struct {
	CardList string
	Title    string
	Platform string
	Reward   string
	Scope    string
	Link     string
}

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	Name      string
	URL       string
	BaseURL   string
	CacheKey  string
	BlockTime int // seconds
	Selectors Selectors
	// DebugHTMLPath, when set, receives a copy of every fetched page
	DebugHTMLPath string
	Client        *http.Client
}
