package feed

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/logger"
)

var whitespace = regexp.MustCompile(`\s+`)

// Fetcher retrieves and parses the configured RSS/Atom feeds.
type Fetcher struct {
	client     *http.Client
	policy     *bluemonday.Policy
	logger     *logger.Log
	maxPerFeed int
	userAgent  string
}

func NewFetcher(cfg *config.FeedsConfig) *Fetcher {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxPerFeed := cfg.MaxPerFeed
	if maxPerFeed <= 0 {
		maxPerFeed = 5
	}

	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		policy:     bluemonday.StrictPolicy(),
		logger:     logger.New(),
		maxPerFeed: maxPerFeed,
		userAgent:  cfg.UserAgent,
	}
}

// Fetch retrieves every source. A single unreachable or invalid feed
// yields a FetchError for that feed only; network timeouts are treated
// the same way. Feed-provided order is preserved within a source.
func (f *Fetcher) Fetch(ctx context.Context, sources []config.FeedSource) ([]Headline, []*FetchError) {
	var headlines []Headline
	var errs []*FetchError

	for _, src := range sources {
		fetched, entryErrs, err := f.fetchOne(ctx, src)
		if err != nil {
			f.logger.WithError(err).Warn(fmt.Sprintf("skipping feed %s", src.Name))
			errs = append(errs, &FetchError{Source: src.Name, URL: src.URL, Err: err})
			continue
		}
		f.logger.Info(fmt.Sprintf("retrieved %d headlines from %s", len(fetched), src.Name))
		headlines = append(headlines, fetched...)
		errs = append(errs, entryErrs...)
	}

	return headlines, errs
}

// fetchOne parses a single feed. Malformed entries are skipped and
// reported; valid entries are still returned.
func (f *Fetcher) fetchOne(ctx context.Context, src config.FeedSource) ([]Headline, []*FetchError, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.userAgent

	parsed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing feed: %w", err)
	}

	var headlines []Headline
	var errs []*FetchError
	for i, item := range parsed.Items {
		if len(headlines) >= f.maxPerFeed {
			break
		}
		if item.Link == "" {
			errs = append(errs, &FetchError{
				Source: src.Name,
				URL:    src.URL,
				Err:    fmt.Errorf("entry %d: missing link", i),
			})
			continue
		}

		title := item.Title
		if title == "" {
			title = "No title"
		}

		headlines = append(headlines, Headline{
			ID:          headlineID(src.Name, item.Link),
			Title:       f.cleanText(title),
			Link:        item.Link,
			Published:   publishedTime(item),
			Source:      src.Name,
			Description: f.cleanText(item.Description),
		})
	}

	return headlines, errs, nil
}

// cleanText strips markup and entities from feed-provided HTML.
func (f *Fetcher) cleanText(s string) string {
	s = f.policy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func publishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
