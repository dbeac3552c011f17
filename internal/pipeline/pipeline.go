// Package pipeline aggregates feed sources into a deduplicated, diversified
// list of news records with full article text.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/kirrog/news-agregator/internal/article"
	"github.com/kirrog/news-agregator/internal/config"
	"github.com/kirrog/news-agregator/internal/feed"
	"github.com/kirrog/news-agregator/internal/logger"
	"github.com/kirrog/news-agregator/internal/metrics"
	"github.com/kirrog/news-agregator/internal/retry"
)

// Record is the final output unit, one per surviving candidate item. Text
// and Err are mutually informative: an empty Text comes with a diagnostic
// unless extraction legitimately found nothing to report.
type Record struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Text      string `json:"text"`
	Error     string `json:"error,omitempty"`
}

// Options are the per-run tunables of a pipeline invocation. Zero Since and
// Until mean no time bound.
type Options struct {
	Since             time.Time
	Until             time.Time
	PerFeedLimit      int
	TotalLimit        int
	ArticleWorkers    int
	MaxPerDomain      int
	TitleSimThreshold int
}

// OptionsFromConfig fills Options with the configured defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PerFeedLimit:      cfg.PerFeedLimit,
		TotalLimit:        cfg.TotalLimit,
		ArticleWorkers:    cfg.ArticleWorkers,
		MaxPerDomain:      cfg.MaxPerDomain,
		TitleSimThreshold: cfg.TitleSimThreshold,
	}
}

type feedSource interface {
	FetchFeed(ctx context.Context, sourceURL string, limit int) []feed.Item
}

type textFetcher interface {
	FetchTexts(ctx context.Context, urls []string, workers int) map[string]article.Result
}

// Driver wires the pipeline stages together.
type Driver struct {
	feeds feedSource
	texts textFetcher
}

func New(cfg *config.Config) *Driver {
	retryCfg := retry.Config{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}
	return &Driver{
		feeds: feed.NewFetcher(cfg.RequestTimeout, cfg.UserAgent, retryCfg),
		texts: article.NewFetcher(cfg),
	}
}

// validate rejects bad configuration before any network activity starts.
func validate(feeds []string, opts Options) error {
	if len(feeds) == 0 {
		return fmt.Errorf("no feed sources given")
	}
	if !opts.Since.IsZero() && !opts.Until.IsZero() && !opts.Since.Before(opts.Until) {
		return fmt.Errorf("invalid time window: since %s >= until %s",
			opts.Since.Format(time.RFC3339), opts.Until.Format(time.RFC3339))
	}
	if opts.PerFeedLimit <= 0 || opts.TotalLimit <= 0 || opts.MaxPerDomain <= 0 || opts.ArticleWorkers <= 0 {
		return fmt.Errorf("limits must be positive")
	}
	return nil
}

// Fetch runs the whole pipeline and blocks until done. Per-source and
// per-article failures degrade to empty contributions or diagnostic fields;
// only the pre-flight validation can fail the call. Callers wanting a global
// deadline wrap ctx themselves.
func (d *Driver) Fetch(ctx context.Context, feeds []string, opts Options) ([]Record, error) {
	if err := validate(feeds, opts); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	items := d.collect(ctx, feeds, opts.PerFeedLimit)
	logger.Info("collected candidate items", "count", len(items), "sources", len(feeds))

	items = filterByWindow(items, opts.Since, opts.Until)
	sortByRecency(items)

	items = dedupByURL(items)
	items = dedupByTitle(items, opts.TitleSimThreshold)
	items = diversify(items, opts.MaxPerDomain, opts.TotalLimit)
	logger.Info("items after dedup and diversification", "count", len(items))

	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.URL)
	}
	texts := d.texts.FetchTexts(ctx, urls, opts.ArticleWorkers)

	records := make([]Record, 0, len(items))
	for _, it := range items {
		rec := Record{
			Title:     it.Title,
			URL:       it.URL,
			Published: it.Published,
			Source:    it.Source,
		}
		if res, ok := texts[it.URL]; ok {
			rec.Text = res.Text
			rec.Error = res.Err
		} else {
			rec.Error = "no_result"
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchResult carries the outcome of an asynchronous run.
type FetchResult struct {
	Records []Record
	Err     error
}

// FetchAsync runs Fetch in its own goroutine and delivers the result on the
// returned channel. Callers that block pick Fetch; callers composing with
// other channel work pick this. No scheduler detection is involved: the two
// entry points are the two concurrency modes.
func (d *Driver) FetchAsync(ctx context.Context, feeds []string, opts Options) <-chan FetchResult {
	out := make(chan FetchResult, 1)
	go func() {
		records, err := d.Fetch(ctx, feeds, opts)
		out <- FetchResult{Records: records, Err: err}
		close(out)
	}()
	return out
}
