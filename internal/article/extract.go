// Package article retrieves full article text for news URLs. Extraction is
// layered: a readability parser first, then a plain download with a generic
// paragraph scraper. Single-strategy extraction fails too often across
// heterogeneous site markup to rely on alone.
package article

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Extractor is one article-text extraction strategy.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, pageURL string) (string, error)
}

// ReadabilityExtractor downloads and parses a page with go-readability.
type ReadabilityExtractor struct {
	Timeout time.Duration
}

func (e *ReadabilityExtractor) Name() string { return "readability" }

func (e *ReadabilityExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	art, err := readability.FromURL(pageURL, timeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(art.TextContent), nil
}

// FallbackExtractor issues a plain GET with a browser-like User-Agent and
// strips the page down to paragraph text. Catches pages that readability
// parsing rejects.
type FallbackExtractor struct {
	Client    *http.Client
	UserAgent string
	Language  string
}

func (e *FallbackExtractor) Name() string { return "fallback" }

// Selector cascade for article bodies, most specific first.
var contentSelectors = []string{
	"article p",
	".article p",
	".article-body p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"#content p",
	"p",
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

func (e *FallbackExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.UserAgent)
	if e.Language != "" {
		req.Header.Set("Accept-Language", e.Language)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var paragraphs []string
	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if utf8.RuneCountInString(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
		paragraphs = paragraphs[:0]
	}
	if len(paragraphs) == 0 {
		// Sparse pages: take whatever paragraph text there is.
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
	}

	text := strings.Join(paragraphs, "\n\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
