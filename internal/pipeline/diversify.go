package pipeline

import (
	"github.com/kirrog/news-agregator/internal/feed"
	"github.com/kirrog/news-agregator/internal/urlutil"
)

// diversify caps accepted items per source domain and stops at totalLimit.
// Items without a URL cannot be attributed to a domain and are dropped.
// Input is recency-sorted, so the short-circuit at totalLimit keeps the most
// recent stories.
func diversify(items []feed.Item, maxPerDomain, totalLimit int) []feed.Item {
	perDomain := make(map[string]int)
	out := make([]feed.Item, 0, min(len(items), totalLimit))

	for _, it := range items {
		if it.URL == "" {
			continue
		}
		d := urlutil.Domain(it.URL)
		if perDomain[d] >= maxPerDomain {
			continue
		}
		perDomain[d]++
		out = append(out, it)
		if len(out) >= totalLimit {
			break
		}
	}
	return out
}
