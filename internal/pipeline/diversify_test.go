package pipeline

import (
	"fmt"
	"testing"

	"github.com/kirrog/news-agregator/internal/feed"
	"github.com/kirrog/news-agregator/internal/urlutil"
)

func TestDiversifyCapsPerDomain(t *testing.T) {
	var items []feed.Item
	for i := 0; i < 10; i++ {
		items = append(items, feed.Item{URL: fmt.Sprintf("https://a.com/%d", i)})
	}
	for i := 0; i < 3; i++ {
		items = append(items, feed.Item{URL: fmt.Sprintf("https://b.com/%d", i)})
	}

	out := diversify(items, 4, 100)

	counts := map[string]int{}
	for _, it := range out {
		counts[urlutil.Domain(it.URL)]++
	}
	if counts["a.com"] != 4 {
		t.Errorf("a.com count = %d, want 4", counts["a.com"])
	}
	if counts["b.com"] != 3 {
		t.Errorf("b.com count = %d, want 3", counts["b.com"])
	}
}

func TestDiversifyTotalLimitShortCircuits(t *testing.T) {
	var items []feed.Item
	for i := 0; i < 20; i++ {
		items = append(items, feed.Item{URL: fmt.Sprintf("https://s%d.com/x", i)})
	}

	out := diversify(items, 800, 5)
	if len(out) != 5 {
		t.Fatalf("got %d items, want 5", len(out))
	}
	// Recency order makes earlier items more valuable: the first five win.
	for i, it := range out {
		want := fmt.Sprintf("https://s%d.com/x", i)
		if it.URL != want {
			t.Errorf("out[%d].URL = %q, want %q", i, it.URL, want)
		}
	}
}

func TestDiversifyDropsItemsWithoutURL(t *testing.T) {
	items := []feed.Item{
		{Title: "no url"},
		{Title: "with url", URL: "https://a.com/1"},
	}
	out := diversify(items, 800, 8000)
	if len(out) != 1 || out[0].URL != "https://a.com/1" {
		t.Errorf("got %+v, want only the item with a URL", out)
	}
}
