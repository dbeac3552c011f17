// Package feed retrieves and parses RSS/Atom sources. A source URL may also
// point at a plain HTML page; in that case the page is scanned for
// syndication links and each discovered feed is fetched instead.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/kirrog/news-agregator/internal/logger"
	"github.com/kirrog/news-agregator/internal/metrics"
	"github.com/kirrog/news-agregator/internal/retry"
	"github.com/kirrog/news-agregator/internal/urlutil"
)

// Item is one candidate news entry produced by feed parsing. It lives only
// for the duration of a pipeline run.
type Item struct {
	Title       string
	URL         string // canonical link, may be empty
	Published   string // ISO-8601 UTC, empty when the feed carries no date
	PublishedAt int64  // unix seconds, 0 when unknown; ordering/filtering only
	Source      string // the feed URL the entry came from
}

// FeedsConfig is the YAML source list structure:
//
// feeds:
//   - https://example.com/rss.xml
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the feed source list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config: %w", err)
	}
	return cfg.Feeds, nil
}

// Fetcher downloads feed sources over a shared HTTP client.
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
	retry     retry.Config
}

func NewFetcher(timeout time.Duration, userAgent string, retryCfg retry.Config) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
		retry:     retryCfg,
	}
}

// FetchFeed returns up to limit items per feed for the source URL. Errors
// never propagate to the caller: a source that cannot be fetched or parsed
// contributes nothing.
func (f *Fetcher) FetchFeed(ctx context.Context, sourceURL string, limit int) []Item {
	body, ctype, err := f.get(ctx, sourceURL)
	if err != nil || len(body) == 0 {
		logger.Warn("feed fetch failed", "url", sourceURL, "error", err)
		metrics.Global.IncrementFeedErrors()
		return nil
	}

	if looksLikeFeed(ctype, body) {
		items := f.parseEntries(sourceURL, body, limit)
		metrics.Global.IncrementFeedsFetched()
		return items
	}

	// Not a feed: treat as an HTML page and follow its syndication links.
	discovered := discoverFeedLinks(sourceURL, body)
	if len(discovered) == 0 {
		logger.Warn("no syndication links found", "url", sourceURL)
		return nil
	}

	var items []Item
	for _, feedURL := range discovered {
		b, _, err := f.get(ctx, feedURL)
		if err != nil || len(b) == 0 {
			logger.Debug("discovered feed fetch failed", "url", feedURL, "error", err)
			continue
		}
		if parsed := f.parseEntries(feedURL, b, limit); len(parsed) > 0 {
			items = append(items, parsed...)
			metrics.Global.IncrementFeedsFetched()
		}
	}
	return items
}

// get issues a GET with the configured retry budget and returns body bytes
// and the Content-Type header.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, string, error) {
	var body []byte
	var ctype string

	err := retry.Do(ctx, f.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return fmt.Errorf("http status %d", resp.StatusCode)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		ctype = strings.ToLower(resp.Header.Get("Content-Type"))
		return nil
	})
	return body, ctype, err
}

// looksLikeFeed decides whether the payload is a feed document: an XML
// content type, or an <rss/<feed marker within the first 2000 bytes.
func looksLikeFeed(contentType string, body []byte) bool {
	if strings.Contains(contentType, "xml") {
		return true
	}
	head := body
	if len(head) > 2000 {
		head = head[:2000]
	}
	return bytes.Contains(head, []byte("<rss")) || bytes.Contains(head, []byte("<feed"))
}

func (f *Fetcher) parseEntries(feedURL string, body []byte, limit int) []Item {
	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		logger.Warn("feed parse failed", "url", feedURL, "error", err)
		return nil
	}

	entries := parsed.Items
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{
			Title:  e.Title,
			URL:    urlutil.Normalize(e.Link),
			Source: feedURL,
		}
		if t := entryTime(e); t != nil {
			item.PublishedAt = t.Unix()
			item.Published = t.UTC().Format("2006-01-02T15:04:05Z")
		}
		items = append(items, item)
	}
	metrics.Global.AddItemsCollected(len(items))
	return items
}

// entryTime prefers the published timestamp and falls back to updated.
func entryTime(e *gofeed.Item) *time.Time {
	if e.PublishedParsed != nil {
		return e.PublishedParsed
	}
	return e.UpdatedParsed
}
