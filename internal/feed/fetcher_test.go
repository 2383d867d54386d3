package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/newsbreeze/config"
)

const goodFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>First story</title>
      <link>http://example.com/first</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <description>&lt;p&gt;Something &amp;amp; something else happened.&lt;/p&gt;</description>
    </item>
    <item>
      <title>Second story</title>
      <link>http://example.com/second</link>
      <pubDate>Sun, 01 Jan 2006 10:00:00 GMT</pubDate>
      <description>More news.</description>
    </item>
  </channel>
</rss>`

const feedWithMalformedEntry = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Mixed Feed</title>
    <item>
      <title>Valid one</title>
      <link>http://example.com/one</link>
      <description>ok</description>
    </item>
    <item>
      <title>No link here</title>
      <description>broken</description>
    </item>
    <item>
      <title>Valid two</title>
      <link>http://example.com/two</link>
      <description>also ok</description>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher() *Fetcher {
	return NewFetcher(&config.FeedsConfig{MaxPerFeed: 5, Timeout: 2, UserAgent: "test"})
}

func TestFetchParsesHeadlines(t *testing.T) {
	srv := serveFeed(t, goodFeed)
	f := newTestFetcher()

	headlines, errs := f.Fetch(context.Background(), []config.FeedSource{{Name: "Test", URL: srv.URL}})

	require.Len(t, headlines, 2)
	assert.Empty(t, errs)

	first := headlines[0]
	assert.Equal(t, "First story", first.Title)
	assert.Equal(t, "http://example.com/first", first.Link)
	assert.Equal(t, "Test", first.Source)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Something & something else happened.", first.Description)
	assert.Equal(t, 2006, first.Published.Year())

	// Feed-provided order is preserved within a source.
	assert.Equal(t, "Second story", headlines[1].Title)
}

func TestFetchSingleUnreachableFeedDoesNotAbortBatch(t *testing.T) {
	srv := serveFeed(t, goodFeed)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	f := newTestFetcher()
	headlines, errs := f.Fetch(context.Background(), []config.FeedSource{
		{Name: "Dead", URL: deadURL},
		{Name: "Alive", URL: srv.URL},
	})

	require.Len(t, headlines, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, "Dead", errs[0].Source)
	assert.Equal(t, deadURL, errs[0].URL)
	assert.Error(t, errs[0].Err)
}

func TestFetchReportsMalformedEntries(t *testing.T) {
	srv := serveFeed(t, feedWithMalformedEntry)
	f := newTestFetcher()

	headlines, errs := f.Fetch(context.Background(), []config.FeedSource{{Name: "Mixed", URL: srv.URL}})

	require.Len(t, headlines, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, "Valid one", headlines[0].Title)
	assert.Equal(t, "Valid two", headlines[1].Title)
	assert.Contains(t, errs[0].Error(), "missing link")
}

func TestFetchRespectsMaxPerFeed(t *testing.T) {
	srv := serveFeed(t, goodFeed)
	f := NewFetcher(&config.FeedsConfig{MaxPerFeed: 1, Timeout: 2})

	headlines, errs := f.Fetch(context.Background(), []config.FeedSource{{Name: "Test", URL: srv.URL}})

	assert.Len(t, headlines, 1)
	assert.Empty(t, errs)
}

func TestFilterByKeywords(t *testing.T) {
	headlines := []Headline{
		{Title: "Markets rally on rate news", Description: "stocks up"},
		{Title: "Local fair opens", Description: "fun for everyone"},
		{Title: "Quiet day", Description: "Rally drivers prepare"},
	}

	filtered := FilterByKeywords(headlines, []string{"rally"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "Markets rally on rate news", filtered[0].Title)
	assert.Equal(t, "Quiet day", filtered[1].Title)

	// No keywords means no filter.
	assert.Len(t, FilterByKeywords(headlines, nil), 3)
	assert.Len(t, FilterByKeywords(headlines, []string{"  ", ""}), 3)
}

func TestLimitPerSource(t *testing.T) {
	headlines := []Headline{
		{Title: "a1", Source: "A"},
		{Title: "a2", Source: "A"},
		{Title: "b1", Source: "B"},
		{Title: "a3", Source: "A"},
	}

	limited := LimitPerSource(headlines, 2)
	require.Len(t, limited, 3)
	assert.Equal(t, "a1", limited[0].Title)
	assert.Equal(t, "a2", limited[1].Title)
	assert.Equal(t, "b1", limited[2].Title)

	assert.Len(t, LimitPerSource(headlines, 0), 4)
}

func TestSortByPublishedNewestFirst(t *testing.T) {
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	headlines := []Headline{
		{Title: "undated"},
		{Title: "old", Published: old},
		{Title: "recent", Published: recent},
	}
	SortByPublished(headlines)

	assert.Equal(t, "recent", headlines[0].Title)
	assert.Equal(t, "old", headlines[1].Title)
	assert.Equal(t, "undated", headlines[2].Title)
}

func TestHeadlineIDIsStable(t *testing.T) {
	a := headlineID("BBC", "http://example.com/x")
	b := headlineID("BBC", "http://example.com/x")
	c := headlineID("NPR", "http://example.com/x")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}
