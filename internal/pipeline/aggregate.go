package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/kirrog/news-agregator/internal/feed"
)

// collect fetches every source concurrently and concatenates the results in
// completion order. One goroutine per source; the source list is expected to
// be small.
func (d *Driver) collect(ctx context.Context, feeds []string, perFeedLimit int) []feed.Item {
	results := make(chan []feed.Item, len(feeds))
	for _, u := range feeds {
		go func(sourceURL string) {
			results <- d.feeds.FetchFeed(ctx, sourceURL, perFeedLimit)
		}(u)
	}

	var items []feed.Item
	for range feeds {
		items = append(items, <-results...)
	}
	return items
}

// filterByWindow keeps items inside [since, until]. A zero bound is unset.
// Items with an unknown timestamp (0) never match a set since bound.
func filterByWindow(items []feed.Item, since, until time.Time) []feed.Item {
	if since.IsZero() && until.IsZero() {
		return items
	}

	filtered := items[:0]
	for _, it := range items {
		if !since.IsZero() && it.PublishedAt < since.Unix() {
			continue
		}
		if !until.IsZero() && it.PublishedAt > until.Unix() {
			continue
		}
		filtered = append(filtered, it)
	}
	return filtered
}

// sortByRecency orders most recent first; unknown timestamps (0) sort last.
func sortByRecency(items []feed.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt > items[j].PublishedAt
	})
}
