// Package news fetches raw news feed items and normalizes them into
// articles.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/models"
)

// DefaultFeedURL is the Google News RSS search endpoint; %s receives the
// escaped query.
const DefaultFeedURL = "https://news.google.com/rss/search?q=%s&hl=en&gl=US&ceid=US:en"

// Source returns the raw items a feed holds for a free-text query. Order and
// recency are decided by the feed.
type Source interface {
	Fetch(ctx context.Context, query string) ([]models.FeedItem, error)
}

// GoogleNews reads an RSS search feed.
type GoogleNews struct {
	template string
	timeout  time.Duration
	parser   *gofeed.Parser
	log      *slog.Logger
}

// NewGoogleNews builds a feed source. An empty template selects
// DefaultFeedURL.
func NewGoogleNews(template string, timeout time.Duration, log *slog.Logger) *GoogleNews {
	if template == "" {
		template = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "esg-risk-radar/1.0"

	return &GoogleNews{template: template, timeout: timeout, parser: parser, log: log}
}

// Fetch downloads and parses the feed for query.
func (g *GoogleNews) Fetch(ctx context.Context, query string) ([]models.FeedItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("fetch news feed: empty query")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	feedURL := fmt.Sprintf(g.template, url.QueryEscape(query))
	feed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}

	items := make([]models.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, models.FeedItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Published:   published(it),
		})
	}

	g.log.Debug("fetched news feed", slog.String("query", query), slog.Int("items", len(items)))
	return items, nil
}

func published(it *gofeed.Item) string {
	if it.PublishedParsed != nil {
		return it.PublishedParsed.UTC().Format(DateLayout)
	}
	return strings.TrimSpace(it.Published)
}

// Articles fetches query from src and normalizes the result.
func Articles(ctx context.Context, src Source, query string, now time.Time) ([]models.Article, error) {
	items, err := src.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return Normalize(items, now), nil
}
