package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

// Package fetch retrieves and parses source feed documents. The announcement
// pipeline never touches XML framing itself; it consumes the parsed item list.

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "herald-status-watcher/1.0"
)

// Fetcher retrieves one parsed feed document per call.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*gofeed.Feed, error)
}

// FeedFetcher fetches feeds over HTTP via resty and parses them with gofeed.
type FeedFetcher struct {
	client *resty.Client
	parser *gofeed.Parser
}

// New builds a FeedFetcher with the given timeout (or the default).
func New(timeout time.Duration) *FeedFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)

	parser := gofeed.NewParser()
	parser.RSSTranslator = newRSSTranslator()

	return &FeedFetcher{
		client: c,
		parser: parser,
	}
}

// Fetch retrieves and parses the feed at url.
func (f *FeedFetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
