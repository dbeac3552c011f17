package pipeline

import (
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/kirrog/news-agregator/internal/feed"
	"github.com/kirrog/news-agregator/internal/metrics"
)

var (
	titlePunctRe = regexp.MustCompile(`["“”«»\[\]\(\)\.\,\!\?\:\;–-]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// titleKey normalizes a title for near-duplicate comparison: lower-case,
// punctuation stripped, whitespace collapsed.
func titleKey(title string) string {
	if title == "" {
		return ""
	}
	t := strings.ToLower(title)
	t = titlePunctRe.ReplaceAllString(t, " ")
	t = spaceRunRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// similarTitles reports whether two non-empty title keys describe the same
// story: substring containment either way, or a partial fuzzy ratio at or
// above threshold (0-100).
func similarTitles(a, b string, threshold int) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return fuzzy.PartialRatio(a, b) >= threshold
}

// dedupByURL keeps the first item for each canonical URL. Items without a
// URL always pass. Order preserving.
func dedupByURL(items []feed.Item) []feed.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if it.URL != "" {
			if _, dup := seen[it.URL]; dup {
				metrics.Global.IncrementDuplicatesFiltered()
				continue
			}
			seen[it.URL] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// dedupByTitle drops items whose title key is similar to any previously
// accepted one. Greedy single pass over the recency-sorted input: each item
// is compared against the accepted set only, not clustered transitively, so
// an item similar to an already-rejected duplicate can slip through. In
// practice similarity is close enough to transitive that this is rare.
func dedupByTitle(items []feed.Item, threshold int) []feed.Item {
	out := make([]feed.Item, 0, len(items))
	var bank []string

	for _, it := range items {
		key := titleKey(it.Title)
		if key == "" {
			// Nothing to compare; accept and record the empty key.
			out = append(out, it)
			bank = append(bank, key)
			continue
		}

		dup := false
		for _, accepted := range bank {
			if similarTitles(key, accepted, threshold) {
				dup = true
				break
			}
		}
		if dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		out = append(out, it)
		bank = append(bank, key)
	}
	return out
}
