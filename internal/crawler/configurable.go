package crawler

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"sjsage522/bountyradar/internal/listing"
	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"
	"sjsage522/bountyradar/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// ConfigurableCrawler extracts listing cards using configured selectors
type ConfigurableCrawler struct {
	BaseCrawler
	Selectors     Selectors
	DebugHTMLPath string
}

// NewConfigurableCrawler creates a new configurable crawler
func NewConfigurableCrawler(config CrawlerConfig, cacheSvc cache.CacheService) *ConfigurableCrawler {
	return &ConfigurableCrawler{
		BaseCrawler: BaseCrawler{
			Name:      config.Name,
			URL:       config.URL,
			BaseURL:   config.BaseURL,
			CacheKey:  config.CacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: time.Duration(config.BlockTime) * time.Second,
			Client:    config.Client,
		},
		Selectors:     config.Selectors,
		DebugHTMLPath: config.DebugHTMLPath,
	}
}

// FetchRecords fetches the page and extracts one raw record per card
func (c *ConfigurableCrawler) FetchRecords(ctx context.Context) ([]listing.RawRecord, error) {
	utf8Body, err := c.fetchWithCache(ctx)
	if err != nil {
		return nil, err
	}

	if c.DebugHTMLPath != "" {
		utf8Body, err = c.dumpHTML(utf8Body)
		if err != nil {
			return nil, err
		}
	}

	doc, err := c.createDocument(utf8Body)
	if err != nil {
		return nil, err
	}

	cards := doc.Find(c.Selectors.CardList)
	records := make([]listing.RawRecord, 0, cards.Length())
	cards.Each(func(_ int, s *goquery.Selection) {
		records = append(records, c.processCard(s))
	})

	logger.ForCrawler(c.GetName()).WithFields(logger.Fields{
		"cards": len(records),
		"url":   c.URL,
	}).Debug().Msg("Extracted cards")
	return records, nil
}

// processCard extracts the raw fields of a single card. Absent elements are
// left nil; a link element without href yields an empty link.
func (c *ConfigurableCrawler) processCard(s *goquery.Selection) listing.RawRecord {
	record := listing.RawRecord{
		Title:    c.textOf(s, c.Selectors.Title),
		Platform: c.textOf(s, c.Selectors.Platform),
		Reward:   c.textOf(s, c.Selectors.Reward),
		Scope:    c.textOf(s, c.Selectors.Scope),
	}

	if c.Selectors.Link != "" {
		linkSel := s.Find(c.Selectors.Link).First()
		if linkSel.Length() > 0 {
			href, _ := linkSel.Attr("href")
			link := c.ResolveURL(href)
			record.Link = &link
		}
	}

	return record
}

func (c *ConfigurableCrawler) textOf(s *goquery.Selection, selector string) *string {
	if selector == "" {
		return nil
	}
	sel := s.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.Text())
	return &text
}

// dumpHTML writes the page to DebugHTMLPath and returns a fresh reader.
// A body that cannot be read in full is a network error.
func (c *ConfigurableCrawler) dumpHTML(body io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.NewNetwork(c.GetName(), "failed to read page body", err)
	}
	if err := os.WriteFile(c.DebugHTMLPath, data, 0644); err != nil {
		logger.ForCrawler(c.GetName()).Warn().Err(err).Str("path", c.DebugHTMLPath).Msg("Failed to write debug HTML")
	}
	return bytes.NewReader(data), nil
}
