package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirrog/news-agregator/internal/retry"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test channel</title>
    <item>
      <title>First story</title>
      <link>https://a.com/1?utm_source=rss&amp;id=7</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second story</title>
      <link>https://a.com/2</link>
    </item>
    <item>
      <title>Third story</title>
      <link>https://a.com/3</link>
    </item>
  </channel>
</rss>`

func testFetcher() *Fetcher {
	return NewFetcher(5*time.Second, "test-agent", retry.Config{Attempts: 2, BaseDelay: time.Millisecond})
}

func TestLooksLikeFeed(t *testing.T) {
	cases := []struct {
		name  string
		ctype string
		body  string
		want  bool
	}{
		{"xml content type", "application/rss+xml; charset=utf-8", "<html></html>", true},
		{"rss marker", "text/html", `<?xml version="1.0"?><rss version="2.0"></rss>`, true},
		{"atom marker", "text/plain", `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`, true},
		{"plain html", "text/html", "<html><body>news site</body></html>", false},
	}
	for _, tc := range cases {
		if got := looksLikeFeed(tc.ctype, []byte(tc.body)); got != tc.want {
			t.Errorf("%s: looksLikeFeed = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseEntries(t *testing.T) {
	f := testFetcher()
	items := f.parseEntries("https://a.com/feed", []byte(sampleRSS), 0)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	first := items[0]
	if first.Title != "First story" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.URL != "https://a.com/1?id=7" {
		t.Errorf("URL = %q, want tracking params stripped", first.URL)
	}
	if first.Published != "2006-01-02T15:04:05Z" {
		t.Errorf("Published = %q", first.Published)
	}
	if first.PublishedAt == 0 {
		t.Error("PublishedAt = 0, want parsed timestamp")
	}
	if first.Source != "https://a.com/feed" {
		t.Errorf("Source = %q", first.Source)
	}

	second := items[1]
	if second.PublishedAt != 0 || second.Published != "" {
		t.Errorf("dateless entry: PublishedAt = %d, Published = %q, want zero values",
			second.PublishedAt, second.Published)
	}
}

func TestParseEntriesRespectsLimit(t *testing.T) {
	f := testFetcher()
	items := f.parseEntries("https://a.com/feed", []byte(sampleRSS), 2)
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestParseEntriesMalformed(t *testing.T) {
	f := testFetcher()
	if items := f.parseEntries("https://a.com/feed", []byte("{not xml}"), 0); items != nil {
		t.Errorf("got %d items from garbage, want none", len(items))
	}
}

func TestDiscoverFeedLinks(t *testing.T) {
	html := `<html><head>
	  <link rel="alternate" type="application/rss+xml" href="/news/rss">
	  <link rel="ALTERNATE" type="application/atom+xml" href="https://b.com/atom">
	  <link rel="stylesheet" type="text/css" href="/style.css">
	</head><body>
	  <a href="/export/top.xml?lang=ru">top</a>
	  <a href="/about">about</a>
	  <a href="/news/rss">duplicate of the link element</a>
	</body></html>`

	got := discoverFeedLinks("https://a.com/page", []byte(html))
	want := []string{
		"https://a.com/news/rss",
		"https://b.com/atom",
		"https://a.com/export/top.xml?lang=ru",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d links %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverFeedLinksCap(t *testing.T) {
	var body string
	for i := 0; i < 30; i++ {
		body += `<a href="/feed` + string(rune('a'+i)) + `.xml">f</a>`
	}
	got := discoverFeedLinks("https://a.com/", []byte("<html><body>"+body+"</body></html>"))
	if len(got) != maxDiscoveredFeeds {
		t.Errorf("got %d links, want %d", len(got), maxDiscoveredFeeds)
	}
}

func TestFetchFeedDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	items := testFetcher().FetchFeed(context.Background(), srv.URL, 1000)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
}

func TestFetchFeedDiscoversFromHTML(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
		  <link rel="alternate" type="application/rss+xml" href="/feed.xml">
		</head><body>front page</body></html>`))
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	})

	items := testFetcher().FetchFeed(context.Background(), srv.URL, 1000)
	if len(items) != 3 {
		t.Fatalf("got %d items via discovery, want 3", len(items))
	}
	if items[0].Source != srv.URL+"/feed.xml" {
		t.Errorf("Source = %q, want the discovered feed URL", items[0].Source)
	}
}

func TestFetchFeedDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if items := testFetcher().FetchFeed(context.Background(), srv.URL, 1000); items != nil {
		t.Errorf("got %d items from failing source, want none", len(items))
	}
}
