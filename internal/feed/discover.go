package feed

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kirrog/news-agregator/internal/urlutil"
)

// maxDiscoveredFeeds caps how many syndication links one HTML page can
// contribute.
const maxDiscoveredFeeds = 10

var feedHrefRe = regexp.MustCompile(`(?i)\.(rss|xml|atom)(\?|$)`)

// discoverFeedLinks scans an HTML page for syndication links: <link
// rel="alternate"> elements with an RSS/XML/Atom type, and anchors whose
// href has a feed-like suffix. Candidates are resolved against the page URL,
// normalized and de-duplicated, keeping document order.
func discoverFeedLinks(pageURL string, body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var candidates []string

	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if !strings.EqualFold(rel, "alternate") {
			return
		}
		typ, _ := s.Attr("type")
		typ = strings.ToLower(typ)
		if !strings.Contains(typ, "rss") && !strings.Contains(typ, "xml") && !strings.Contains(typ, "atom") {
			return
		}
		if href, ok := s.Attr("href"); ok && href != "" {
			candidates = append(candidates, resolveRef(base, href))
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if feedHrefRe.MatchString(href) {
			candidates = append(candidates, resolveRef(base, href))
		}
	})

	seen := make(map[string]struct{}, len(candidates))
	var uniq []string
	for _, c := range candidates {
		nc := urlutil.Normalize(c)
		if nc == "" {
			continue
		}
		if _, dup := seen[nc]; dup {
			continue
		}
		seen[nc] = struct{}{}
		uniq = append(uniq, nc)
		if len(uniq) >= maxDiscoveredFeeds {
			break
		}
	}
	return uniq
}

func resolveRef(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
