package article

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kirrog/news-agregator/internal/cache"
	"github.com/kirrog/news-agregator/internal/config"
	"github.com/kirrog/news-agregator/internal/logger"
	"github.com/kirrog/news-agregator/internal/metrics"
)

// Result is the outcome of text extraction for one URL. Err is a diagnostic
// string, empty on success; failed URLs still produce a Result so callers
// can audit dead or paywalled links.
type Result struct {
	Text string
	Err  string
}

// Fetcher runs the extractor cascade over a bounded worker pool.
type Fetcher struct {
	extractors []Extractor
	minLen     int
	cache      *cache.Cache
	cacheTTL   time.Duration
}

func NewFetcher(cfg *config.Config) *Fetcher {
	client := &http.Client{Timeout: cfg.RequestTimeout}
	return &Fetcher{
		extractors: []Extractor{
			&ReadabilityExtractor{Timeout: cfg.RequestTimeout},
			&FallbackExtractor{
				Client:    client,
				UserAgent: cfg.UserAgent,
				Language:  cfg.Language,
			},
		},
		minLen:   cfg.MinArticleLen,
		cache:    cache.New(),
		cacheTTL: cfg.ArticleCacheTTL,
	}
}

// FetchTexts extracts text for every distinct URL exactly once, with at most
// workers extractions in flight. Completion order is not defined; results
// are keyed by URL.
func (f *Fetcher) FetchTexts(ctx context.Context, urls []string, workers int) map[string]Result {
	if workers <= 0 {
		workers = 1
	}

	distinct := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		distinct = append(distinct, u)
	}

	results := make(map[string]Result, len(distinct))
	var mu sync.Mutex
	var wg sync.WaitGroup

	jobs := make(chan string)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				res := f.extractOne(ctx, u)
				mu.Lock()
				results[u] = res
				mu.Unlock()
			}
		}()
	}

	for _, u := range distinct {
		jobs <- u
	}
	close(jobs)
	wg.Wait()

	return results
}

// extractOne tries each strategy in order; the first text over the length
// floor wins. Below-floor text counts as failure so paywall stubs and
// boilerplate do not pass for articles.
func (f *Fetcher) extractOne(ctx context.Context, url string) Result {
	if f.cache != nil {
		if v, ok := f.cache.Get(url); ok {
			return v.(Result)
		}
	}

	var failures []string
	var res Result

	for _, ex := range f.extractors {
		text, err := ex.Extract(ctx, url)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s:%v", ex.Name(), err))
			continue
		}
		if n := utf8.RuneCountInString(text); n <= f.minLen {
			failures = append(failures, fmt.Sprintf("%s:short_or_empty (%d)", ex.Name(), n))
			continue
		}
		res = Result{Text: text}
		break
	}

	if res.Text == "" {
		res.Err = strings.Join(failures, "; ")
		metrics.Global.IncrementExtractionFailures()
		logger.Debug("article extraction failed", "url", url, "error", res.Err)
	} else {
		metrics.Global.IncrementArticlesExtracted()
	}

	if f.cache != nil {
		f.cache.Set(url, res, f.cacheTTL)
	}
	return res
}
