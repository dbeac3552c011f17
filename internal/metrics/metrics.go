package metrics

import (
	"sync"
	"time"
)

// Metrics collects counters for one process. Safe for concurrent use.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedErrors         int64
	ItemsCollected     int64
	DuplicatesFiltered int64
	ArticlesExtracted  int64
	ExtractionFailures int64

	// Timings
	LastRunDuration    time.Duration
	TotalRunDuration   time.Duration
	AverageRunDuration time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedErrors++
}

func (m *Metrics) AddItemsCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsCollected += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementArticlesExtracted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesExtracted++
}

func (m *Metrics) IncrementExtractionFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionFailures++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++
	m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":           m.FeedsFetched,
		"feed_errors":             m.FeedErrors,
		"items_collected":         m.ItemsCollected,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"articles_extracted":      m.ArticlesExtracted,
		"extraction_failures":     m.ExtractionFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
