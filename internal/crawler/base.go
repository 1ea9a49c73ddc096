package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sjsage522/bountyradar/helpers"
	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"
	"sjsage522/bountyradar/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// BaseCrawler provides fetching, rate-limit blocking and URL resolution
type BaseCrawler struct {
	Name      string
	URL       string
	BaseURL   string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Client    *http.Client
}

// fetchWithCache fetches the source page unless a previous rate limit is
// still being honoured. A rate-limited response arms the block key.
func (c *BaseCrawler) fetchWithCache(ctx context.Context) (io.Reader, error) {
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, errors.NewRateLimit(c.GetName(),
				fmt.Sprintf("%s (blocked for %ds)", c.CacheKey, int(c.BlockTime/time.Second)))
		}
	}

	client := c.Client
	if client == nil {
		client = helpers.NewHTTPClient(10 * time.Second)
	}

	utf8Body, err := helpers.FetchWithBrowserHeaders(ctx, client, c.URL)
	if err != nil {
		if errors.Is(err, errors.ErrorTypeRateLimit) && c.CacheSvc != nil && c.CacheKey != "" {
			value := []byte(fmt.Sprintf("%d", int(c.BlockTime/time.Second)))
			if setErr := c.CacheSvc.Set(c.CacheKey, value, c.BlockTime); setErr != nil {
				logger.ForCache().Warn().Err(setErr).Str("key", c.CacheKey).Msg("Failed to set rate limit block")
			}
		}
		return nil, err
	}

	return utf8Body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, errors.NewParsing(c.GetName(), "failed to parse HTML", err)
	}
	return doc, nil
}

// ResolveURL turns a relative href into an absolute URL against BaseURL.
// Empty, fragment-only and unparseable hrefs are returned unchanged.
func (c *BaseCrawler) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil || c.BaseURL == "" {
		return href
	}
	return base.ResolveReference(ref).String()
}

// GetName returns the crawler name
func (c *BaseCrawler) GetName() string {
	if c.Name == "" {
		return "BaseCrawler"
	}
	return c.Name
}
