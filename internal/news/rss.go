// Package news searches headline feeds for instrument-related stories.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint.
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// RSSSource implements sentiment.HeadlineSource over an RSS search endpoint.
type RSSSource struct {
	BaseURL string
	parser  *gofeed.Parser
}

// NewRSSSource creates a source with optional proxy support.
func NewRSSSource(baseURL, proxyURL string) *RSSSource {
	if baseURL == "" {
		baseURL = DefaultGoogleNewsURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Timeout:   20 * time.Second,
		Transport: transport,
	}
	parser.UserAgent = "Mozilla/5.0"
	return &RSSSource{BaseURL: baseURL, parser: parser}
}

// Search returns up to limit headline titles for query, in feed order.
func (s *RSSSource) Search(ctx context.Context, query string, limit int) ([]string, error) {
	feedURL := fmt.Sprintf("%s?q=%s", s.BaseURL, url.QueryEscape(query))
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	titles := make([]string, 0, limit)
	for _, item := range feed.Items {
		if limit > 0 && len(titles) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}
