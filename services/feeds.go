package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"sentiment-edge/models"
	"sentiment-edge/observability"
)

// FeedSource is one RSS feed to poll for headlines.
type FeedSource struct {
	Name string
	URL  string
}

// DefaultFeedSources lists general market news feeds used when no custom
// set is configured.
var DefaultFeedSources = []FeedSource{
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex"},
	{Name: "CNBC Markets", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910258"},
	{Name: "MarketWatch", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
}

// RSSService fetches headlines from RSS feeds and filters them by ticker
// mention. It is an alternative HeadlineSource for tickers not covered by
// the primary provider.
type RSSService struct {
	sources []FeedSource
	parser  *gofeed.Parser
}

// NewRSSService creates an RSS headline source with the default feeds
func NewRSSService() *RSSService {
	return NewRSSServiceWithSources(DefaultFeedSources)
}

// NewRSSServiceWithSources creates an RSS headline source with custom feeds
func NewRSSServiceWithSources(sources []FeedSource) *RSSService {
	return &RSSService{
		sources: sources,
		parser:  gofeed.NewParser(),
	}
}

// Name returns the headline source name
func (s *RSSService) Name() string { return BreakerFeeds }

// GetHeadlines returns headlines mentioning the ticker published within
// the date range. Individual feed failures are skipped; if every feed
// fails the result is models.ErrDataUnavailable.
func (s *RSSService) GetHeadlines(ctx context.Context, ticker string, start, end time.Time) ([]models.Headline, error) {
	metrics := observability.GetMetrics()
	needle := strings.ToUpper(ticker)

	var headlines []models.Headline
	failures := 0
	for _, src := range s.sources {
		metrics.RecordExternalAPIRequest(BreakerFeeds, "parse_feed")
		timer := metrics.NewTimer()
		feed, err := s.parser.ParseURLWithContext(src.URL, ctx)
		timer.ObserveExternalAPI(BreakerFeeds, "parse_feed")
		if err != nil {
			failures++
			metrics.RecordExternalAPIError(BreakerFeeds, "parse_feed", "request_failed")
			observability.Warn("rss feed failed, skipping",
				"feed", src.Name,
				"error", err)
			continue
		}

		for _, item := range feed.Items {
			if item.PublishedParsed == nil {
				continue
			}
			published := item.PublishedParsed.UTC()
			if published.Before(start) || published.After(end) {
				continue
			}
			if !strings.Contains(strings.ToUpper(item.Title), needle) {
				continue
			}
			headlines = append(headlines, models.Headline{
				Title:       item.Title,
				URL:         item.Link,
				PublishedAt: published,
			})
		}
	}

	if failures == len(s.sources) {
		return nil, fmt.Errorf("all %d rss feeds failed: %w", failures, models.ErrDataUnavailable)
	}

	metrics.RecordHeadlinesFetched(BreakerFeeds, len(headlines))
	return headlines, nil
}
