package crawler

import (
	"sjsage522/bountyradar/config"
	"sjsage522/bountyradar/services/cache"
)

// BBRadarSelectors are the card selectors of bbradar.io
var BBRadarSelectors = Selectors{
	CardList: "div.bounty-card",
	Title:    "h3",
	Platform: "span.bounty-platform",
	Reward:   "span.bounty-reward",
	Scope:    "span.bounty-scope",
	Link:     "a.bounty-link",
}

// NewBBRadarCrawler creates the crawler for the configured listing page
func NewBBRadarCrawler(cfg *config.Config, cacheSvc cache.CacheService) *ConfigurableCrawler {
	return NewConfigurableCrawler(CrawlerConfig{
		Name:          "BBRadar",
		URL:           cfg.SourceURL,
		BaseURL:       cfg.SourceURL,
		CacheKey:      "bbradar_rate_limited",
		BlockTime:     int(cfg.RateLimitBlock.Seconds()),
		Selectors:     BBRadarSelectors,
		DebugHTMLPath: cfg.DebugHTMLPath,
		Client:        cfg.HTTPClient(),
	}, cacheSvc)
}
